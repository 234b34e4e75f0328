package router

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ybenhayun/shuk/internal/action"
	"github.com/ybenhayun/shuk/internal/convstate"
	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/notify"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
)

type capturingSender struct {
	mu   sync.Mutex
	sent []transport.Message
}

func (c *capturingSender) Send(_ context.Context, msg transport.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

type fixture struct {
	router *Router
	conv   *convstate.Store
	stores Stores
	sender *capturingSender
	db     *sql.DB
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := Stores{
		Users:       store.NewUserStore(db),
		Lists:       store.NewListStore(db),
		Items:       store.NewItemStore(db),
		Categories:  store.NewCategoryStore(db),
		Suggestions: store.NewSuggestionStore(db),
		Templates:   store.NewTemplateStore(db),
		Schedules:   store.NewScheduleStore(db),
		Settings:    store.NewSettingsStore(db),
	}
	sender := &capturingSender{}
	conv := convstate.New()
	notifier := notify.New(slog.Default(), sender, st.Users, store.NewPushStore(db), nil, nil)
	r := New(slog.Default(), st, conv, notifier, Options{})
	return &fixture{router: r, conv: conv, stores: st, sender: sender, db: db}
}

func (f *fixture) member(t *testing.T, chatID int64, name string) *model.User {
	t.Helper()
	return f.withRole(t, chatID, name, model.RoleMember)
}

func (f *fixture) admin(t *testing.T, chatID int64, name string) *model.User {
	t.Helper()
	return f.withRole(t, chatID, name, model.RoleAdmin)
}

func (f *fixture) withRole(t *testing.T, chatID int64, name, role string) *model.User {
	t.Helper()
	u, err := f.stores.Users.Ensure(chatID, name)
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	u, err = f.stores.Users.SetRole(u.ID, role)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	return u
}

func (f *fixture) route(t *testing.T, ev transport.Event) []transport.Message {
	t.Helper()
	msgs, err := f.router.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route(%+v) error = %v", ev, err)
	}
	if len(msgs) == 0 {
		t.Fatalf("Route(%+v) returned no messages", ev)
	}
	return msgs
}

func (f *fixture) primaryID(t *testing.T) int64 {
	t.Helper()
	primary, err := f.stores.Lists.GetPrimary()
	if err != nil {
		t.Fatalf("get primary: %v", err)
	}
	return primary.ID
}

func TestUnauthorizedUserGetsWelcome(t *testing.T) {
	f := setupRouter(t)

	msgs := f.route(t, transport.Event{ChatID: 100, DisplayName: "Stranger", Text: "hi"})
	if msgs[0].Key != "welcome.unauthorized" {
		t.Errorf("reply key = %q, want welcome.unauthorized", msgs[0].Key)
	}
	if len(msgs[0].Buttons) == 0 {
		t.Error("welcome should offer the admin-code button")
	}

	// Mutating actions are not reachable.
	msgs = f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("lists")})
	if msgs[0].Key != "welcome.unauthorized" {
		t.Errorf("reply key = %q, want welcome.unauthorized", msgs[0].Key)
	}
}

func TestAdminCodeGrantsRole(t *testing.T) {
	f := setupRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	if err := f.stores.Settings.Set("admin_code_hash", string(hash)); err != nil {
		t.Fatalf("set setting: %v", err)
	}

	f.route(t, transport.Event{ChatID: 100, DisplayName: "Noa", ActionToken: action.Encode("admin")})

	msgs := f.route(t, transport.Event{ChatID: 100, Text: "wrong"})
	if msgs[0].Key != "admin.bad_code" {
		t.Fatalf("wrong code reply = %q, want admin.bad_code", msgs[0].Key)
	}

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("admin")})
	msgs = f.route(t, transport.Event{ChatID: 100, Text: "open-sesame"})
	if msgs[0].Key != "admin.granted" {
		t.Fatalf("correct code reply = %q, want admin.granted", msgs[0].Key)
	}

	u, err := f.stores.Users.GetByChatID(100)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !u.IsAdmin() {
		t.Error("user role not elevated after correct code")
	}
}

func TestPickAddsItemWithDelimiterInCategoryKey(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")
	listID := f.primaryID(t)

	token := action.Encode("pick", "1", "meat_fish", "Salmon")
	msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: token})
	if msgs[0].Key != "item.added" {
		t.Fatalf("reply key = %q, want item.added", msgs[0].Key)
	}

	items, err := f.stores.Items.ListByList(listID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Salmon" || items[0].CategoryKey != "meat_fish" {
		t.Errorf("items = %+v, want Salmon under meat_fish", items)
	}
}

func TestAddItemWizard(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")
	listID := f.primaryID(t)

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("type", "1", "dairy")})
	msgs := f.route(t, transport.Event{ChatID: 100, Text: "Goat cheese"})
	if msgs[0].Key != "item.ask_note" {
		t.Fatalf("after name reply = %q, want item.ask_note", msgs[0].Key)
	}
	msgs = f.route(t, transport.Event{ChatID: 100, Text: "2"})
	if msgs[0].Key != "item.added" {
		t.Fatalf("after note reply = %q, want item.added", msgs[0].Key)
	}

	items, err := f.stores.Items.ListByList(listID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Note != "2" {
		t.Errorf("items = %+v, want one Goat cheese with note 2", items)
	}
}

func TestTopLevelCommandClearsWizard(t *testing.T) {
	f := setupRouter(t)
	u := f.member(t, 100, "Noa")

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("type", "1", "dairy")})
	if _, ok := f.conv.Get(u.ID); !ok {
		t.Fatal("wizard state missing after type action")
	}

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("menu")})
	if _, ok := f.conv.Get(u.ID); ok {
		t.Error("wizard state survived a top-level command")
	}
}

func TestUnknownActionToken(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")

	msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: "frobnicate_42"})
	if msgs[0].Key != "error.unknown_action" {
		t.Errorf("reply key = %q, want error.unknown_action", msgs[0].Key)
	}
}

func TestMemberCannotBroadcastOrModerate(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")

	for _, token := range []string{
		action.Encode("bc"),
		action.Encode("sug_pending"),
		action.Encode("list_freeze", "1"),
		action.Encode("list_reset", "1"),
		action.Encode("sched", "1"),
	} {
		msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: token})
		if msgs[0].Key != "error.not_authorized" {
			t.Errorf("token %q reply = %q, want error.not_authorized", token, msgs[0].Key)
		}
	}
}

func TestSuggestionWizardNotifiesAdmins(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")
	f.admin(t, 200, "Dan")

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("sug", "condiments")})
	msgs := f.route(t, transport.Event{ChatID: 100, Text: "Olives"})
	if msgs[0].Key != "suggestion.ask_translation" {
		t.Fatalf("after name reply = %q", msgs[0].Key)
	}
	msgs = f.route(t, transport.Event{ChatID: 100, Text: "זיתים"})
	if msgs[0].Key != "suggestion.submitted" {
		t.Fatalf("after translation reply = %q", msgs[0].Key)
	}

	f.sender.mu.Lock()
	defer f.sender.mu.Unlock()
	found := false
	for _, m := range f.sender.sent {
		if m.ChatID == 200 && m.Key == "suggestion.new" {
			found = true
		}
	}
	if !found {
		t.Error("admin was not notified of the new suggestion")
	}
}

func TestApproveSuggestionNotifiesProposer(t *testing.T) {
	f := setupRouter(t)
	proposer := f.member(t, 100, "Noa")
	f.admin(t, 200, "Dan")

	sug, err := f.stores.Suggestions.SubmitItem(proposer.ID, "condiments", "Olives", "זיתים")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	msgs := f.route(t, transport.Event{ChatID: 200, ActionToken: action.Encode("sug_app", "1")})
	if msgs[0].Key != "suggestion.resolved" {
		t.Fatalf("approve reply = %q", msgs[0].Key)
	}

	got, err := f.stores.Suggestions.GetItem(sug.ID)
	if err != nil {
		t.Fatalf("get suggestion: %v", err)
	}
	if got.Status != model.SuggestionApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}

	f.sender.mu.Lock()
	defer f.sender.mu.Unlock()
	found := false
	for _, m := range f.sender.sent {
		if m.ChatID == 100 && m.Key == "suggestion.approved" {
			found = true
		}
	}
	if !found {
		t.Error("proposer was not notified of approval")
	}
}

func TestRecoverableErrorKeepsWizardState(t *testing.T) {
	f := setupRouter(t)
	u := f.member(t, 100, "Noa")

	f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("sug", "dairy")})
	// "Milk" is already in the effective set: Duplicate, recoverable.
	f.route(t, transport.Event{ChatID: 100, Text: "Milk"})
	msgs := f.route(t, transport.Event{ChatID: 100, Text: "-"})
	if msgs[0].Key != "error.duplicate" {
		t.Fatalf("duplicate reply = %q", msgs[0].Key)
	}
	if _, ok := f.conv.Get(u.ID); !ok {
		t.Error("recoverable failure cleared the wizard state")
	}
}

func TestUnrecoverableErrorClearsWizardState(t *testing.T) {
	f := setupRouter(t)
	u := f.member(t, 100, "Noa")

	// Wizard against a list that does not exist.
	f.conv.Set(u.ID, convstate.AwaitingListRename{ListID: 9999})
	msgs := f.route(t, transport.Event{ChatID: 100, Text: "New Name"})
	if msgs[0].Key != "error.not_found" {
		t.Fatalf("reply = %q, want error.not_found", msgs[0].Key)
	}
	if _, ok := f.conv.Get(u.ID); ok {
		t.Error("unrecoverable failure left wizard state behind")
	}
}

func TestProtectedListDelete(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")

	msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("list_del", "1")})
	if msgs[0].Key != "error.protected" {
		t.Errorf("reply = %q, want error.protected", msgs[0].Key)
	}

	primary, err := f.stores.Lists.GetPrimary()
	if err != nil || primary == nil || !primary.Active {
		t.Errorf("primary list damaged: %+v err=%v", primary, err)
	}
}

func TestVoiceFallback(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")

	msgs := f.route(t, transport.Event{ChatID: 100, Voice: []byte{1, 2, 3}})
	if msgs[0].Key != "voice.unavailable" {
		t.Errorf("no transcriber reply = %q, want voice.unavailable", msgs[0].Key)
	}
}

type failingTranscriber struct{}

func (failingTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return "", errors.New("service down")
}

func TestVoiceTranscriberFailure(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")
	f.router.transcriber = failingTranscriber{}

	msgs := f.route(t, transport.Event{ChatID: 100, Voice: []byte{1, 2, 3}})
	if msgs[0].Key != "voice.unrecognized" {
		t.Errorf("reply = %q, want voice.unrecognized", msgs[0].Key)
	}
}

func TestRateLimiter(t *testing.T) {
	f := setupRouter(t)
	f.member(t, 100, "Noa")

	limited := false
	for i := 0; i < 12; i++ {
		msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("menu")})
		if msgs[0].Key == "error.rate_limited" {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("burst of events was never rate limited")
	}
}

func TestLanguageSwitch(t *testing.T) {
	f := setupRouter(t)
	u := f.member(t, 100, "Noa")

	msgs := f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("lang")})
	if msgs[0].Key != "lang.ask" || len(msgs[0].Buttons) == 0 {
		t.Fatalf("reply = %+v, want lang.ask with choices", msgs[0])
	}

	msgs = f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("lang", "he")})
	if msgs[0].Key != "lang.set" {
		t.Fatalf("reply = %q, want lang.set", msgs[0].Key)
	}

	got, err := f.stores.Users.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Locale != "he" {
		t.Errorf("locale = %q, want he", got.Locale)
	}

	msgs = f.route(t, transport.Event{ChatID: 100, ActionToken: action.Encode("lang", "fr")})
	if msgs[0].Key != "error.invalid_input" {
		t.Errorf("reply = %q, want error.invalid_input", msgs[0].Key)
	}
}

func TestBroadcastWizard(t *testing.T) {
	f := setupRouter(t)
	f.admin(t, 200, "Dan")
	f.member(t, 100, "Noa")
	f.member(t, 300, "Avi")

	f.route(t, transport.Event{ChatID: 200, ActionToken: action.Encode("bc")})
	msgs := f.route(t, transport.Event{ChatID: 200, Text: "Store closes early today"})
	if msgs[0].Key != "broadcast.sent" {
		t.Fatalf("reply = %q, want broadcast.sent", msgs[0].Key)
	}
	if len(msgs[0].Args) != 1 || msgs[0].Args[0] != 2 {
		t.Errorf("broadcast.sent args = %v, want [2]", msgs[0].Args)
	}
}
