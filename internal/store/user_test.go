package store

import (
	"errors"
	"testing"

	"github.com/ybenhayun/shuk/internal/model"
)

func TestEnsureCreatesUnauthorized(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	u, err := users.Ensure(1001, "Noa")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if u.Role != model.RoleUnauthorized {
		t.Errorf("new user role = %q, want %q", u.Role, model.RoleUnauthorized)
	}
	if u.Authorized() {
		t.Error("new user should not be authorized")
	}

	again, err := users.Ensure(1001, "Noa")
	if err != nil {
		t.Fatalf("Ensure() second call error = %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("Ensure() created a second row: %d vs %d", again.ID, u.ID)
	}
}

func TestEnsureRefreshesDisplayName(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	u, err := users.Ensure(1001, "Noa")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	renamed, err := users.Ensure(1001, "Noa L.")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if renamed.ID != u.ID {
		t.Fatalf("Ensure() created a new row on rename")
	}
	if renamed.DisplayName != "Noa L." {
		t.Errorf("display name = %q, want %q", renamed.DisplayName, "Noa L.")
	}
}

func TestSetRole(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	u := mustUser(t, db, 1001, "Noa", model.RoleUnauthorized)

	promoted, err := users.SetRole(u.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if !promoted.IsAdmin() {
		t.Error("promoted user should be admin")
	}

	if _, err := users.SetRole(u.ID, "owner"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetRole(invalid) error = %v, want ErrInvalidInput", err)
	}
	if _, err := users.SetRole(9999, model.RoleMember); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetRole(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListAdminsAndAuthorized(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	mustUser(t, db, 1, "Stranger", model.RoleUnauthorized)
	mustUser(t, db, 2, "Member", model.RoleMember)
	mustUser(t, db, 3, "Admin", model.RoleAdmin)

	admins, err := users.ListAdmins()
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	if len(admins) != 1 || admins[0].DisplayName != "Admin" {
		t.Errorf("ListAdmins() = %v, want just the admin", admins)
	}

	authorized, err := users.ListAuthorized()
	if err != nil {
		t.Fatalf("ListAuthorized() error = %v", err)
	}
	if len(authorized) != 2 {
		t.Errorf("ListAuthorized() returned %d users, want 2", len(authorized))
	}
}
