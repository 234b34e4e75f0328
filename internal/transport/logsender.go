package transport

import (
	"context"
	"log/slog"
)

// LogSender writes outbound messages to the log instead of a chat
// service. Used for development wiring and tests.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "logsender")}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("send", "chat_id", msg.ChatID, "key", msg.Key, "args", msg.Args, "buttons", len(msg.Buttons))
	return nil
}
