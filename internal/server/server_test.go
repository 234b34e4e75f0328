package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ybenhayun/shuk/internal/backup"
	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/weblink"
	"github.com/ybenhayun/shuk/internal/websocket"
)

func setupServer(t *testing.T) (*Server, *weblink.Issuer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "shuk.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.Default()
	issuer := weblink.NewIssuer("test-secret", time.Hour)
	mgr := backup.NewManager(backup.Config{DBPath: dbPath}, db,
		store.NewBackupStore(db), store.NewSettingsStore(db), nil, logger)

	srv := New(Config{Addr: ":0"}, Deps{
		Hub:     websocket.NewHub(logger),
		Push:    push.NewService("pub", "priv"),
		Subs:    store.NewPushStore(db),
		Links:   issuer,
		Backups: mgr,
	}, logger)
	return srv, issuer
}

func TestHealthNeedsNoToken(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestVAPIDKeyRequiresToken(t *testing.T) {
	srv, issuer := setupServer(t)

	req := httptest.NewRequest("GET", "/api/push/vapid-key", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	token, err := issuer.Mint(1, "member")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	req = httptest.NewRequest("GET", "/api/push/vapid-key?token="+token, nil)
	rec = httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "pub") {
		t.Errorf("body = %q, want VAPID public key", rec.Body.String())
	}
}

func TestSubscribeStoresEndpoint(t *testing.T) {
	srv, issuer := setupServer(t)
	token, _ := issuer.Mint(1, "member")

	body := `{"endpoint":"https://push.example/abc","keys":{"p256dh":"p","auth":"a"}}`
	req := httptest.NewRequest("POST", "/api/push/subscribe", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestSubscribeRejectsEmptyKeys(t *testing.T) {
	srv, issuer := setupServer(t)
	token, _ := issuer.Mint(1, "member")

	body := `{"endpoint":"https://push.example/abc","keys":{}}`
	req := httptest.NewRequest("POST", "/api/push/subscribe", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBackupStatusAdminOnly(t *testing.T) {
	srv, issuer := setupServer(t)

	memberToken, _ := issuer.Mint(1, "member")
	req := httptest.NewRequest("GET", "/api/backup/status?token="+memberToken, nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	adminToken, _ := issuer.Mint(2, "admin")
	req = httptest.NewRequest("GET", "/api/backup/status?token="+adminToken, nil)
	rec = httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "disabled") {
		t.Errorf("body = %q, want disabled backup state", rec.Body.String())
	}
}
