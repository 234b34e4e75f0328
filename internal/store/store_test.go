package store

import (
	"database/sql"
	"testing"

	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, db *sql.DB, chatID int64, name, role string) *model.User {
	t.Helper()
	users := NewUserStore(db)
	u, err := users.Ensure(chatID, name)
	if err != nil {
		t.Fatalf("ensure user %s: %v", name, err)
	}
	if role != model.RoleUnauthorized {
		u, err = users.SetRole(u.ID, role)
		if err != nil {
			t.Fatalf("set role %s: %v", role, err)
		}
	}
	return u
}

func mustPrimaryList(t *testing.T, db *sql.DB) *model.List {
	t.Helper()
	list, err := NewListStore(db).GetPrimary()
	if err != nil {
		t.Fatalf("get primary list: %v", err)
	}
	return list
}
