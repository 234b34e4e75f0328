// Package notify fans domain notifications out to chat recipients, the
// admin webpush channel and the dashboard event feed. Delivery is best
// effort: a failing recipient is logged and skipped, never escalated to
// the operation that triggered the notification.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
	"github.com/ybenhayun/shuk/internal/websocket"
)

const (
	retryBase = 100 * time.Millisecond
	retryMax  = 2
)

type Notifier struct {
	logger  *slog.Logger
	sender  transport.Sender
	users   *store.UserStore
	subs    *store.PushStore
	pushSvc *push.Service
	hub     *websocket.Hub
}

// New wires a notifier. pushSvc and hub may be nil when those channels
// are not configured.
func New(logger *slog.Logger, sender transport.Sender, users *store.UserStore, subs *store.PushStore, pushSvc *push.Service, hub *websocket.Hub) *Notifier {
	return &Notifier{
		logger:  logger.With("component", "notify"),
		sender:  sender,
		users:   users,
		subs:    subs,
		pushSvc: pushSvc,
		hub:     hub,
	}
}

// send delivers one message with bounded exponential backoff.
func (n *Notifier) send(ctx context.Context, msg transport.Message) error {
	backoff := retry.WithMaxRetries(retryMax, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.sender.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// NotifyUser sends one message to one user, logging on failure.
func (n *Notifier) NotifyUser(ctx context.Context, chatID int64, key string, args ...any) {
	msg := transport.Message{ChatID: chatID, Key: key, Args: args}
	if err := n.send(ctx, msg); err != nil {
		n.logger.Error("notify user", "chat_id", chatID, "key", key, "error", err)
	}
}

// NotifyAdmins fans a message out to every admin.
func (n *Notifier) NotifyAdmins(ctx context.Context, key string, args ...any) {
	admins, err := n.users.ListAdmins()
	if err != nil {
		n.logger.Error("list admins", "error", err)
		return
	}
	n.fanOut(ctx, admins, 0, key, args...)
}

// Broadcast sends a message to every authorized user except the sender.
// Returns the number of successful deliveries.
func (n *Notifier) Broadcast(ctx context.Context, excludeChatID int64, key string, args ...any) int {
	recipients, err := n.users.ListAuthorized()
	if err != nil {
		n.logger.Error("list authorized", "error", err)
		return 0
	}
	return n.fanOut(ctx, recipients, excludeChatID, key, args...)
}

func (n *Notifier) fanOut(ctx context.Context, recipients []model.User, excludeChatID int64, key string, args ...any) int {
	sent := 0
	for _, u := range recipients {
		if u.ChatID == excludeChatID {
			continue
		}
		msg := transport.Message{ChatID: u.ChatID, Key: key, Args: args}
		if err := n.send(ctx, msg); err != nil {
			n.logger.Error("fan out", "chat_id", u.ChatID, "key", key, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Publish emits a domain event to the dashboard feed and, when a webpush
// payload is given, to all registered browser subscriptions. Expired
// subscriptions are pruned.
func (n *Notifier) Publish(entity, action string, id int64, extra map[string]any, payload *push.Payload) {
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewEvent(entity, action, id, extra))
	}

	if n.pushSvc == nil || payload == nil {
		return
	}
	subs, err := n.subs.List()
	if err != nil {
		n.logger.Error("list push subscriptions", "error", err)
		return
	}
	for _, sub := range subs {
		if err := n.pushSvc.Send(&sub, *payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				if derr := n.subs.DeleteByEndpoint(sub.Endpoint); derr != nil {
					n.logger.Error("prune subscription", "error", derr)
				}
				continue
			}
			n.logger.Error("webpush send", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
