// Package server runs the small HTTP console: a health check, the live
// event feed, and the push subscription endpoints. Everything except
// /health requires a dashboard token minted by the bot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ybenhayun/shuk/internal/backup"
	"github.com/ybenhayun/shuk/internal/middleware"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/weblink"
	"github.com/ybenhayun/shuk/internal/websocket"
)

// Config holds console server configuration.
type Config struct {
	Addr string
}

// Server is the HTTP console server.
type Server struct {
	cfg    Config
	logger *slog.Logger
	http   *http.Server
}

// Deps bundles what the handlers need.
type Deps struct {
	Hub     *websocket.Hub
	Push    *push.Service
	Subs    *store.PushStore
	Links   *weblink.Issuer
	Backups *backup.Manager
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.With("component", "server"),
	}

	limiter := middleware.NewRateLimiter()
	byIP := func(r *http.Request) string { return middleware.RealIP(r) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	authed := middleware.RequireToken(deps.Links)
	mux.Handle("GET /ws", authed(websocket.Handle(deps.Hub, logger)))
	mux.Handle("GET /api/push/vapid-key", authed(s.handleVAPIDKey(deps.Push)))
	mux.Handle("POST /api/push/subscribe",
		middleware.RateLimit(limiter, byIP, 10, time.Minute)(authed(s.handleSubscribe(deps.Subs))))
	mux.Handle("DELETE /api/push/subscribe", authed(s.handleUnsubscribe(deps.Subs)))
	mux.Handle("GET /api/backup/status",
		authed(middleware.RequireAdmin(s.handleBackupStatus(deps.Backups))))
	mux.Handle("POST /api/backup/run",
		authed(middleware.RequireAdmin(s.handleBackupRun(deps.Backups))))

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("console listening", "addr", s.cfg.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVAPIDKey(svc *push.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"key": svc.VAPIDPublicKey()})
	}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handleSubscribe(subs *store.PushStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.TokenClaims(r.Context())
		userID, err := claims.UserID()
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		sub, err := subs.Create(userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
		if err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			s.logger.Error("create subscription", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": sub.ID})
	}
}

func (s *Server) handleUnsubscribe(subs *store.PushStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Endpoint string `json:"endpoint"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if err := subs.DeleteByEndpoint(req.Endpoint); err != nil {
			s.logger.Error("delete subscription", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleBackupStatus(mgr *backup.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mgr.Status())
	}
}

func (s *Server) handleBackupRun(mgr *backup.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mgr.RunNow(r.Context())
		if err != nil {
			s.logger.Error("manual backup", "error", err)
			http.Error(w, "Backup failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"backup_id": id})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
