package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
)

// fakeSender records deliveries and fails permanently for chat ids in
// failFor.
type fakeSender struct {
	mu      sync.Mutex
	sent    []transport.Message
	failFor map[int64]bool
}

func (f *fakeSender) Send(_ context.Context, msg transport.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.ChatID] {
		return errors.New("unreachable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func setupNotifier(t *testing.T, sender transport.Sender) (*Notifier, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	n := New(slog.Default(), sender, users, store.NewPushStore(db), nil, nil)
	return n, users
}

func TestBroadcastSkipsFailingRecipient(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{200: true}}
	n, users := setupNotifier(t, sender)

	for chatID, name := range map[int64]string{100: "Noa", 200: "Dan", 300: "Avi"} {
		u, err := users.Ensure(chatID, name)
		if err != nil {
			t.Fatalf("ensure: %v", err)
		}
		if _, err := users.SetRole(u.ID, model.RoleMember); err != nil {
			t.Fatalf("set role: %v", err)
		}
	}

	sent := n.Broadcast(context.Background(), 0, "broadcast.message", "hello")
	if sent != 2 {
		t.Errorf("Broadcast() sent %d, want 2 (one recipient unreachable)", sent)
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	sender := &fakeSender{}
	n, users := setupNotifier(t, sender)

	for chatID, name := range map[int64]string{100: "Noa", 200: "Dan"} {
		u, err := users.Ensure(chatID, name)
		if err != nil {
			t.Fatalf("ensure: %v", err)
		}
		if _, err := users.SetRole(u.ID, model.RoleMember); err != nil {
			t.Fatalf("set role: %v", err)
		}
	}

	sent := n.Broadcast(context.Background(), 100, "broadcast.message", "hello")
	if sent != 1 {
		t.Fatalf("Broadcast() sent %d, want 1", sent)
	}
	if len(sender.sent) != 1 || sender.sent[0].ChatID != 200 {
		t.Errorf("delivery went to %+v, want chat 200 only", sender.sent)
	}
}

func TestNotifyAdminsOnlyReachesAdmins(t *testing.T) {
	sender := &fakeSender{}
	n, users := setupNotifier(t, sender)

	member, err := users.Ensure(100, "Noa")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := users.SetRole(member.ID, model.RoleMember); err != nil {
		t.Fatalf("set role: %v", err)
	}
	admin, err := users.Ensure(200, "Dan")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := users.SetRole(admin.ID, model.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	n.NotifyAdmins(context.Background(), "suggestion.new", "Olives")

	if len(sender.sent) != 1 || sender.sent[0].ChatID != 200 {
		t.Errorf("deliveries = %+v, want admin chat 200 only", sender.sent)
	}
}
