package main

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ybenhayun/shuk/internal/backup"
	"github.com/ybenhayun/shuk/internal/convstate"
	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/logging"
	"github.com/ybenhayun/shuk/internal/notify"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/router"
	"github.com/ybenhayun/shuk/internal/scheduler"
	"github.com/ybenhayun/shuk/internal/server"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
	"github.com/ybenhayun/shuk/internal/weblink"
	"github.com/ybenhayun/shuk/internal/websocket"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := logging.Setup(getenv("SHUK_LOG_LEVEL", "info"))

	dbPath := getenv("SHUK_DB_PATH", "shuk.db")
	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	stores := router.Stores{
		Users:       store.NewUserStore(db),
		Lists:       store.NewListStore(db),
		Items:       store.NewItemStore(db),
		Categories:  store.NewCategoryStore(db),
		Suggestions: store.NewSuggestionStore(db),
		Templates:   store.NewTemplateStore(db),
		Schedules:   store.NewScheduleStore(db),
		Settings:    store.NewSettingsStore(db),
	}

	if err := seedAdminCode(stores.Settings, os.Getenv("SHUK_ADMIN_CODE")); err != nil {
		log.Fatalf("seed admin code: %v", err)
	}

	vapidPublic := os.Getenv("SHUK_VAPID_PUBLIC_KEY")
	vapidPrivate := os.Getenv("SHUK_VAPID_PRIVATE_KEY")
	if vapidPublic == "" || vapidPrivate == "" {
		vapidPublic, vapidPrivate, err = push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("generate VAPID keys: %v", err)
		}
		logger.Warn("generated ephemeral VAPID keys; set SHUK_VAPID_PUBLIC_KEY and SHUK_VAPID_PRIVATE_KEY to persist subscriptions")
	}
	pushSvc := push.NewService(vapidPublic, vapidPrivate)

	subs := store.NewPushStore(db)
	hub := websocket.NewHub(logger)
	sender := transport.NewLogSender(logger)
	notifier := notify.New(logger, sender, stores.Users, subs, pushSvc, hub)

	links := weblink.NewIssuer(getenv("SHUK_LINK_SECRET", "dev-secret"), 15*time.Minute)

	rt := router.New(logger, stores, convstate.New(), notifier, router.Options{
		Links:      links,
		ConsoleURL: getenv("SHUK_CONSOLE_URL", "http://localhost:8080"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Development transport: stdin lines become chat events, replies go
	// through the log sender. Lines starting with "/" are action tokens.
	go devLoop(ctx, rt, sender, logger)

	sched := scheduler.New(logger, stores.Schedules, stores.Lists, notifier)
	sched.Start(ctx)
	defer sched.Stop()

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("SHUK_S3_ENDPOINT"),
			Bucket:    os.Getenv("SHUK_S3_BUCKET"),
			Region:    getenv("SHUK_S3_REGION", "auto"),
			AccessKey: os.Getenv("SHUK_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("SHUK_S3_SECRET_KEY"),
		},
		DBPath: dbPath,
	}, db, store.NewBackupStore(db), stores.Settings, nil, logger)
	backupMgr.Start(ctx)
	defer backupMgr.Stop()

	srv := server.New(server.Config{
		Addr: ":" + getenv("SHUK_PORT", "8080"),
	}, server.Deps{
		Hub:     hub,
		Push:    pushSvc,
		Subs:    subs,
		Links:   links,
		Backups: backupMgr,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// seedAdminCode hashes the configured admin elevation code into settings.
// An empty code leaves the stored hash untouched so restarts without the
// variable do not lock admins out.
func seedAdminCode(settings *store.SettingsStore, code string) error {
	if code == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return settings.Set("admin_code_hash", string(hash))
}

func devLoop(ctx context.Context, rt *router.Router, sender transport.Sender, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev := transport.Event{ChatID: 1, DisplayName: "dev"}
		if strings.HasPrefix(line, "/") {
			ev.ActionToken = line[1:]
		} else {
			ev.Text = line
		}

		msgs, err := rt.Route(ctx, ev)
		if err != nil {
			logger.Error("route", "error", err)
			continue
		}
		for _, msg := range msgs {
			sender.Send(ctx, msg)
		}
	}
}
