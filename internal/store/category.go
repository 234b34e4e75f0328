package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/ybenhayun/shuk/internal/action"
	"github.com/ybenhayun/shuk/internal/category"
	"github.com/ybenhayun/shuk/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// validCategoryKey additionally rejects keys whose token encodings a
// longer verb would swallow: a category named "cat" would make
// "sug_cat" undecodable as suggest-item.
func validCategoryKey(key string) bool {
	if !keyPattern.MatchString(key) {
		return false
	}
	return !action.KeyCollides("sug", key) && !action.KeyCollides("cat", key)
}

func scanCustomCategory(scanner interface{ Scan(...any) error }) (*model.CustomCategory, error) {
	var c model.CustomCategory
	var createdBy sql.NullInt64
	err := scanner.Scan(&c.ID, &c.Key, &c.Emoji, &c.NameEN, &c.NameHE, &createdBy, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	return &c, nil
}

const customCategoryCols = `id, key, emoji, name_en, name_he, created_by, created_at`

// All returns the browsable categories: built-in first, then custom ones.
func (s *CategoryStore) All() ([]category.Info, error) {
	infos := category.Builtin()

	rows, err := s.db.Query(`SELECT ` + customCategoryCols + ` FROM custom_categories ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCustomCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan custom category: %w", err)
		}
		infos = append(infos, category.Info{Key: c.Key, Emoji: c.Emoji, NameEN: c.NameEN, NameHE: c.NameHE})
	}
	return infos, rows.Err()
}

// Get resolves a category key against the built-in catalog and the custom
// categories table.
func (s *CategoryStore) Get(key string) (*category.Info, error) {
	if info, ok := category.Lookup(key); ok {
		return &info, nil
	}

	row := s.db.QueryRow(`SELECT `+customCategoryCols+` FROM custom_categories WHERE key = ?`, key)
	c, err := scanCustomCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom category: %w", err)
	}
	return &category.Info{Key: c.Key, Emoji: c.Emoji, NameEN: c.NameEN, NameHE: c.NameHE}, nil
}

// Keys returns every known category key, built-in and custom. Used by the
// action decoder to split keyed arguments.
func (s *CategoryStore) Keys() ([]string, error) {
	keys := category.Keys()

	rows, err := s.db.Query(`SELECT key FROM custom_categories ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list custom keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// CreateCustom adds a custom category. The key must be unique across both
// the built-in catalog and existing custom categories.
func (s *CategoryStore) CreateCustom(key, emoji, nameEN, nameHE string, createdBy int64) (*model.CustomCategory, error) {
	key = strings.TrimSpace(key)
	nameEN = strings.TrimSpace(nameEN)
	if !validCategoryKey(key) || nameEN == "" {
		return nil, ErrInvalidInput
	}
	if _, ok := category.Lookup(key); ok {
		return nil, ErrDuplicate
	}

	result, err := s.db.Exec(
		`INSERT INTO custom_categories (key, emoji, name_en, name_he, created_by) VALUES (?, ?, ?, ?, ?)`,
		key, emoji, nameEN, nameHE, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert custom category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+customCategoryCols+` FROM custom_categories WHERE id = ?`, id)
	c, err := scanCustomCategory(row)
	if err != nil {
		return nil, fmt.Errorf("get custom category: %w", err)
	}
	return c, nil
}

// EffectiveItems resolves (static ∪ dynamic) − tombstoned for a category
// key in the given locale.
func (s *CategoryStore) EffectiveItems(key, locale string) ([]string, error) {
	if _, err := s.Get(key); err != nil {
		return nil, err
	}

	static := category.StaticItems(key, locale)

	dynamic, err := s.dynamicNames(key, locale)
	if err != nil {
		return nil, err
	}

	tombstoned, err := s.tombstonedNames(key)
	if err != nil {
		return nil, err
	}

	return category.Resolve(static, dynamic, tombstoned), nil
}

func (s *CategoryStore) dynamicNames(key, locale string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name_en, name_he FROM dynamic_category_items WHERE category_key = ? ORDER BY id ASC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("list dynamic items: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var en, he string
		if err := rows.Scan(&en, &he); err != nil {
			return nil, fmt.Errorf("scan dynamic item: %w", err)
		}
		name := en
		if locale == "he" && he != "" {
			name = he
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *CategoryStore) tombstonedNames(key string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM category_tombstones WHERE category_key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("list tombstones: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tombstone: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddDynamicItem makes a name available under a category key. Fails with
// ErrDuplicate if the name already resolves as present in the default
// locale (static and not tombstoned, or already dynamic).
func (s *CategoryStore) AddDynamicItem(key, nameEN, nameHE string, addedBy int64) (*model.DynamicItem, error) {
	nameEN = strings.TrimSpace(nameEN)
	if nameEN == "" {
		return nil, ErrInvalidInput
	}

	effective, err := s.EffectiveItems(key, category.DefaultLocale)
	if err != nil {
		return nil, err
	}
	if category.Contains(effective, nameEN) {
		return nil, ErrDuplicate
	}

	result, err := s.db.Exec(
		`INSERT INTO dynamic_category_items (category_key, name_en, name_he, added_by) VALUES (?, ?, ?, ?)`,
		key, nameEN, strings.TrimSpace(nameHE), addedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert dynamic item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, category_key, name_en, name_he, added_by, created_at FROM dynamic_category_items WHERE id = ?`,
		id,
	)
	var d model.DynamicItem
	var by sql.NullInt64
	if err := row.Scan(&d.ID, &d.CategoryKey, &d.NameEN, &d.NameHE, &by, &d.CreatedAt); err != nil {
		return nil, fmt.Errorf("get dynamic item: %w", err)
	}
	if by.Valid {
		d.AddedBy = &by.Int64
	}
	return &d, nil
}

// RemoveDynamicItem deletes a dynamic item by name, case-insensitively.
func (s *CategoryStore) RemoveDynamicItem(key, name string) error {
	result, err := s.db.Exec(
		`DELETE FROM dynamic_category_items WHERE category_key = ? AND name_en = ? COLLATE NOCASE`,
		key, name,
	)
	if err != nil {
		return fmt.Errorf("delete dynamic item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Tombstone permanently hides a static item name from the category's
// effective set.
func (s *CategoryStore) Tombstone(key, name string, removedBy int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidInput
	}
	if _, err := s.Get(key); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO category_tombstones (category_key, name, removed_by) VALUES (?, ?, ?)`,
		key, name, removedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert tombstone: %w", err)
	}
	return nil
}

// Restore removes a tombstone. It does not re-validate that the underlying
// static name still exists.
func (s *CategoryStore) Restore(key, name string) error {
	result, err := s.db.Exec(
		`DELETE FROM category_tombstones WHERE category_key = ? AND name = ? COLLATE NOCASE`,
		key, name,
	)
	if err != nil {
		return fmt.Errorf("delete tombstone: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
