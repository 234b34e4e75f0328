// Package router turns inbound chat events into operations against the
// data access layer and conversation state, and emits response
// descriptors for the transport to render.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ybenhayun/shuk/internal/action"
	"github.com/ybenhayun/shuk/internal/convstate"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/notify"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
	"github.com/ybenhayun/shuk/internal/weblink"
)

// ErrNotAuthorized is returned when the caller lacks the required role.
var ErrNotAuthorized = errors.New("not authorized")

// Stores bundles the data access dependencies.
type Stores struct {
	Users       *store.UserStore
	Lists       *store.ListStore
	Items       *store.ItemStore
	Categories  *store.CategoryStore
	Suggestions *store.SuggestionStore
	Templates   *store.TemplateStore
	Schedules   *store.ScheduleStore
	Settings    *store.SettingsStore
}

type Router struct {
	logger      *slog.Logger
	registry    *action.Registry
	conv        *convstate.Store
	st          Stores
	notifier    *notify.Notifier
	transcriber transport.Transcriber
	links       *weblink.Issuer
	consoleURL  string

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

// Options carries the optional collaborators.
type Options struct {
	Transcriber transport.Transcriber
	Links       *weblink.Issuer
	ConsoleURL  string
}

func New(logger *slog.Logger, st Stores, conv *convstate.Store, notifier *notify.Notifier, opts Options) *Router {
	return &Router{
		logger:      logger.With("component", "router"),
		registry:    action.NewRegistry(action.Verbs...),
		conv:        conv,
		st:          st,
		notifier:    notifier,
		transcriber: opts.Transcriber,
		links:       opts.Links,
		consoleURL:  opts.ConsoleURL,
		limiters:    make(map[int64]*rate.Limiter),
	}
}

// limiter returns the per-user event limiter, creating it on first use.
func (r *Router) limiter(userID int64) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 10)
		r.limiters[userID] = l
	}
	return l
}

// Route handles one inbound event to completion and returns the messages
// to send back.
func (r *Router) Route(ctx context.Context, ev transport.Event) ([]transport.Message, error) {
	user, err := r.st.Users.Ensure(ev.ChatID, ev.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	if !r.limiter(user.ID).Allow() {
		return r.reply(user, "error.rate_limited"), nil
	}

	// Voice falls back to typed text on any transcription failure.
	if len(ev.Voice) > 0 {
		if r.transcriber == nil {
			return r.reply(user, "voice.unavailable"), nil
		}
		text, err := r.transcriber.Transcribe(ctx, ev.Voice)
		if err != nil || text == "" {
			r.logger.Info("transcription failed", "user_id", user.ID, "error", err)
			return r.reply(user, "voice.unrecognized"), nil
		}
		ev.Text = text
	}

	// The admin-code wizard is the only flow open to unauthorized users.
	if !user.Authorized() {
		return r.routeUnauthorized(ctx, user, ev)
	}

	// Mid-wizard free text goes to the continuation handler.
	if !ev.IsAction() {
		if state, ok := r.conv.Get(user.ID); ok {
			return r.continueWizard(ctx, user, state, ev.Text)
		}
		return r.mainMenu(user), nil
	}

	// Every action token is a top-level command: wizards never leak
	// across commands.
	r.conv.Clear(user.ID)

	verb, rest, err := r.registry.Decode(ev.ActionToken)
	if err != nil {
		r.logger.Info("unknown action", "user_id", user.ID, "token", ev.ActionToken)
		return r.reply(user, "error.unknown_action"), nil
	}

	msgs, err := r.dispatch(ctx, user, verb, rest)
	if err != nil {
		return r.errorReply(user, err), nil
	}
	return msgs, nil
}

func (r *Router) routeUnauthorized(ctx context.Context, user *model.User, ev transport.Event) ([]transport.Message, error) {
	if ev.IsAction() {
		verb, _, err := r.registry.Decode(ev.ActionToken)
		if err == nil && verb == "admin" {
			r.conv.Set(user.ID, convstate.AwaitingAdminCode{})
			return r.reply(user, "admin.ask_code"), nil
		}
		return r.replyWith(user, "welcome.unauthorized", nil, adminCodeKeyboard()), nil
	}

	if state, ok := r.conv.Get(user.ID); ok {
		if _, waiting := state.(convstate.AwaitingAdminCode); waiting {
			return r.continueWizard(ctx, user, state, ev.Text)
		}
		r.conv.Clear(user.ID)
	}
	return r.replyWith(user, "welcome.unauthorized", nil, adminCodeKeyboard()), nil
}

func adminCodeKeyboard() [][]transport.Button {
	return [][]transport.Button{{
		{LabelKey: "button.enter_admin_code", Action: action.Encode("admin")},
	}}
}

// errorReply maps a failure onto a localized response. Recoverable
// failures (bad input, duplicates) leave any wizard state in place so
// the user can retry; unrecoverable ones clear it.
func (r *Router) errorReply(user *model.User, err error) []transport.Message {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return r.reply(user, "error.not_authorized")
	case errors.Is(err, store.ErrInvalidInput):
		return r.reply(user, "error.invalid_input")
	case errors.Is(err, store.ErrDuplicate):
		return r.reply(user, "error.duplicate")
	case errors.Is(err, store.ErrFrozen):
		r.conv.Clear(user.ID)
		return r.reply(user, "error.frozen")
	case errors.Is(err, store.ErrProtected):
		r.conv.Clear(user.ID)
		return r.reply(user, "error.protected")
	case errors.Is(err, store.ErrNotFound):
		r.conv.Clear(user.ID)
		return r.reply(user, "error.not_found")
	default:
		r.conv.Clear(user.ID)
		r.logger.Error("route", "user_id", user.ID, "error", err)
		return r.reply(user, "error.internal")
	}
}

func (r *Router) reply(user *model.User, key string, args ...any) []transport.Message {
	return []transport.Message{{ChatID: user.ChatID, Key: key, Args: args}}
}

func (r *Router) replyWith(user *model.User, key string, args []any, buttons [][]transport.Button) []transport.Message {
	return []transport.Message{{ChatID: user.ChatID, Key: key, Args: args, Buttons: buttons}}
}

func (r *Router) requireAdmin(user *model.User) error {
	if !user.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}

func (r *Router) mainMenu(user *model.User) []transport.Message {
	rows := [][]transport.Button{
		{
			{LabelKey: "button.lists", Action: action.Encode("lists")},
			{LabelKey: "button.templates", Action: action.Encode("tpls")},
		},
		{
			{LabelKey: "button.suggest_category", Action: action.Encode("sug_cat")},
			{LabelKey: "button.language", Action: action.Encode("lang")},
		},
	}
	if user.IsAdmin() {
		rows = append(rows, []transport.Button{
			{LabelKey: "button.pending_suggestions", Action: action.Encode("sug_pending")},
			{LabelKey: "button.broadcast", Action: action.Encode("bc")},
		})
		if r.links != nil {
			rows = append(rows, []transport.Button{
				{LabelKey: "button.dashboard", Action: action.Encode("dash")},
			})
		}
	}
	return r.replyWith(user, "menu.main", nil, rows)
}
