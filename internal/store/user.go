package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ybenhayun/shuk/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.ChatID, &u.DisplayName, &u.Role, &u.Locale, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, chat_id, display_name, role, locale, created_at, updated_at`

// Ensure returns the user for the given chat identity, creating an
// unauthorized row on first contact. The display name is refreshed on
// every call since transports may change it.
func (s *UserStore) Ensure(chatID int64, displayName string) (*model.User, error) {
	existing, err := s.GetByChatID(chatID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if displayName != "" && displayName != existing.DisplayName {
			_, err = s.db.Exec(
				`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`,
				displayName, time.Now().UTC(), existing.ID,
			)
			if err != nil {
				return nil, fmt.Errorf("refresh display name: %w", err)
			}
			existing.DisplayName = displayName
		}
		return existing, nil
	}

	result, err := s.db.Exec(
		`INSERT INTO users (chat_id, display_name, role, locale) VALUES (?, ?, ?, ?)`,
		chatID, displayName, model.RoleUnauthorized, "en",
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByChatID(chatID int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE chat_id = ?`, chatID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by chat id: %w", err)
	}
	return u, nil
}

// SetRole changes a user's role. Users are never hard-deleted; revoking
// access means downgrading back to unauthorized.
func (s *UserStore) SetRole(id int64, role string) (*model.User, error) {
	switch role {
	case model.RoleUnauthorized, model.RoleMember, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("role %q: %w", role, ErrInvalidInput)
	}

	result, err := s.db.Exec(
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(id)
}

func (s *UserStore) SetLocale(id int64, locale string) error {
	_, err := s.db.Exec(
		`UPDATE users SET locale = ?, updated_at = ? WHERE id = ?`,
		locale, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set locale: %w", err)
	}
	return nil
}

// ListAdmins returns all admin users, consumed by the notification fan-out.
func (s *UserStore) ListAdmins() ([]model.User, error) {
	return s.listByRoles(model.RoleAdmin)
}

// ListAuthorized returns all members and admins.
func (s *UserStore) ListAuthorized() ([]model.User, error) {
	return s.listByRoles(model.RoleMember, model.RoleAdmin)
}

func (s *UserStore) listByRoles(roles ...string) ([]model.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE role IN (?`
	args := []any{roles[0]}
	for _, r := range roles[1:] {
		query += `, ?`
		args = append(args, r)
	}
	query += `) ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
