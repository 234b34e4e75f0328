package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ybenhayun/shuk/internal/model"
)

type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	var createdBy sql.NullInt64
	var frozen, active int

	err := scanner.Scan(&l.ID, &l.Name, &l.Description, &l.Kind, &frozen, &active, &createdBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	l.Frozen = frozen != 0
	l.Active = active != 0
	if createdBy.Valid {
		l.CreatedBy = &createdBy.Int64
	}
	return &l, nil
}

const listCols = `id, name, description, kind, frozen, active, created_by, created_at`

// GetPrimary returns the protected primary list. The seed migration
// guarantees it exists.
func (s *ListStore) GetPrimary() (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE kind = ? LIMIT 1`, model.KindPrimary)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get primary list: %w", err)
	}
	return l, nil
}

func (s *ListStore) GetByID(id int64) (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ListActive returns all active lists, primary first.
func (s *ListStore) ListActive() ([]model.List, error) {
	rows, err := s.db.Query(
		`SELECT ` + listCols + ` FROM lists WHERE active = 1
		 ORDER BY CASE kind WHEN 'primary' THEN 0 ELSE 1 END, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) Create(name, description string, createdBy int64) (*model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	result, err := s.db.Exec(
		`INSERT INTO lists (name, description, kind, created_by) VALUES (?, ?, ?, ?)`,
		name, description, model.KindCustom, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListStore) Rename(id int64, name string) (*model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	_, err = s.db.Exec(`UPDATE lists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	return s.GetByID(id)
}

// SoftDelete marks a custom list inactive. The primary list is protected.
func (s *ListStore) SoftDelete(id int64) error {
	existing, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if existing.Kind == model.KindPrimary {
		return ErrProtected
	}

	_, err = s.db.Exec(`UPDATE lists SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("soft delete list: %w", err)
	}
	return nil
}

// SetFrozen freezes or unfreezes a list. Freezing toggles write-ability;
// it never destroys content or per-user item statuses.
func (s *ListStore) SetFrozen(id int64, frozen bool) (*model.List, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	f := 0
	if frozen {
		f = 1
	}
	_, err = s.db.Exec(`UPDATE lists SET frozen = ? WHERE id = ?`, f, id)
	if err != nil {
		return nil, fmt.Errorf("set frozen: %w", err)
	}
	return s.GetByID(id)
}

// Reset deletes all items (cascading notes and statuses) and unfreezes the
// list, leaving the list row itself. Runs as one transaction.
func (s *ListStore) Reset(id int64) (int64, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, ErrNotFound
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM items WHERE list_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("reset items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err := tx.Exec(`UPDATE lists SET frozen = 0 WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("unfreeze on reset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset: %w", err)
	}
	return count, nil
}
