// Package transport defines the boundary between the coordinator core and
// the chat messaging layer. The core consumes inbound Events and emits
// Messages carrying semantic keys; rendering, localization string tables
// and delivery all live on the other side of these interfaces.
package transport

import "context"

// Event is an inbound user event. Exactly one of Text, ActionToken or
// Voice is expected to be set.
type Event struct {
	ChatID      int64
	DisplayName string
	Text        string
	ActionToken string
	Voice       []byte
}

// IsAction reports whether the event carries a structured action token.
func (e Event) IsAction() bool {
	return e.ActionToken != ""
}

// Button is an inline action offered with a message. Label is a semantic
// key resolved by the transport's Localizer; Action is an encoded action
// token round-tripped back through Event.ActionToken when pressed.
type Button struct {
	LabelKey  string
	LabelArgs []any
	Action    string
}

// Message is an outbound response descriptor. Key identifies the message
// text semantically; Args are positional parameters for the localized
// template. Buttons lay out as rows.
type Message struct {
	ChatID  int64
	Key     string
	Args    []any
	Buttons [][]Button
}

// Sender delivers a message to one recipient. Best effort: callers
// tolerate per-recipient failure.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Localizer resolves a semantic key to display text for a locale. The
// core itself never formats user-facing strings.
type Localizer interface {
	Localize(key, locale string, args ...any) string
}

// Transcriber converts a voice payload to text. Implementations are
// optional external services; callers fall back to prompting for typed
// text on any error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
