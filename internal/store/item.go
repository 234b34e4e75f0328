package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ybenhayun/shuk/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var createdBy sql.NullInt64

	err := scanner.Scan(&item.ID, &item.ListID, &item.Name, &item.CategoryKey, &item.Note, &createdBy, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		item.CreatedBy = &createdBy.Int64
	}
	return &item, nil
}

const itemCols = `id, list_id, name, category_key, note, created_by, created_at`

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) ListByList(listID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE list_id = ? ORDER BY category_key ASC, name COLLATE NOCASE ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Add inserts an item or merges it into an existing same-name item on the
// list. The whole merge-or-insert runs as one transaction. Merge policy:
//
//   - names match case-insensitively within the list
//   - an absent note merges into the existing item unchanged
//   - a numeric note is treated as a quantity and merges by max()
//   - a non-numeric note appends as an ItemNote unless an identical note
//     already exists on the item
//
// The returned bool reports whether a new item row was created.
func (s *ItemStore) Add(listID int64, name, categoryKey, note string, authorID int64) (*model.Item, bool, error) {
	name = strings.TrimSpace(name)
	note = strings.TrimSpace(note)
	if name == "" {
		return nil, false, ErrInvalidInput
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin add item: %w", err)
	}
	defer tx.Rollback()

	var frozen, active int
	err = tx.QueryRow(`SELECT frozen, active FROM lists WHERE id = ?`, listID).Scan(&frozen, &active)
	if err == sql.ErrNoRows {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("check list: %w", err)
	}
	if active == 0 {
		return nil, false, ErrNotFound
	}
	if frozen != 0 {
		return nil, false, ErrFrozen
	}

	row := tx.QueryRow(
		`SELECT `+itemCols+` FROM items WHERE list_id = ? AND name = ? COLLATE NOCASE LIMIT 1`,
		listID, name,
	)
	existing, err := scanItem(row)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("find existing item: %w", err)
	}

	if existing == nil {
		result, err := tx.Exec(
			`INSERT INTO items (list_id, name, category_key, note, created_by) VALUES (?, ?, ?, ?, ?)`,
			listID, name, categoryKey, note, authorID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, false, fmt.Errorf("last insert id: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("commit add item: %w", err)
		}
		item, err := s.GetByID(id)
		return item, true, err
	}

	if err := mergeNote(tx, existing, note, authorID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit merge item: %w", err)
	}
	item, err := s.GetByID(existing.ID)
	return item, false, err
}

// mergeNote applies the note merge policy against an existing item inside
// the caller's transaction.
func mergeNote(tx *sql.Tx, existing *model.Item, note string, authorID int64) error {
	if note == "" {
		return nil
	}

	newQty, newNumeric := parseQuantity(note)
	oldQty, oldNumeric := parseQuantity(existing.Note)

	switch {
	case newNumeric && (oldNumeric || existing.Note == ""):
		merged := newQty
		if oldNumeric && oldQty > merged {
			merged = oldQty
		}
		_, err := tx.Exec(`UPDATE items SET note = ? WHERE id = ?`, strconv.Itoa(merged), existing.ID)
		if err != nil {
			return fmt.Errorf("merge quantity: %w", err)
		}
		return nil

	default:
		// Descriptive note, or a quantity colliding with a descriptive
		// note: append unless the exact text is already attached.
		if strings.EqualFold(existing.Note, note) {
			return nil
		}
		var twin int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM item_notes WHERE item_id = ? AND text = ? COLLATE NOCASE`,
			existing.ID, note,
		).Scan(&twin)
		if err != nil {
			return fmt.Errorf("check note twin: %w", err)
		}
		if twin > 0 {
			return nil
		}
		_, err = tx.Exec(
			`INSERT INTO item_notes (item_id, author_id, text) VALUES (?, ?, ?)`,
			existing.ID, authorID, note,
		)
		if err != nil {
			return fmt.Errorf("append note: %w", err)
		}
		return nil
	}
}

func parseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Remove deletes an item and, via cascade, its notes and statuses.
func (s *ItemStore) Remove(id int64) error {
	item, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	var frozen int
	err = s.db.QueryRow(`SELECT frozen FROM lists WHERE id = ?`, item.ListID).Scan(&frozen)
	if err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if frozen != 0 {
		return ErrFrozen
	}

	_, err = s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// AddNote appends a free-text note to an item. Like Add and Remove it is
// a write to the list's content, so a frozen list rejects it.
func (s *ItemStore) AddNote(itemID, authorID int64, text string) (*model.ItemNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	item, err := s.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	var frozen int
	err = s.db.QueryRow(`SELECT frozen FROM lists WHERE id = ?`, item.ListID).Scan(&frozen)
	if err != nil {
		return nil, fmt.Errorf("check list: %w", err)
	}
	if frozen != 0 {
		return nil, ErrFrozen
	}

	result, err := s.db.Exec(
		`INSERT INTO item_notes (item_id, author_id, text) VALUES (?, ?, ?)`,
		itemID, authorID, text,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT id, item_id, author_id, text, created_at FROM item_notes WHERE id = ?`, id)
	return scanItemNote(row)
}

func scanItemNote(scanner interface{ Scan(...any) error }) (*model.ItemNote, error) {
	var n model.ItemNote
	var authorID sql.NullInt64
	err := scanner.Scan(&n.ID, &n.ItemID, &authorID, &n.Text, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		n.AuthorID = &authorID.Int64
	}
	return &n, nil
}

// Notes returns an item's notes oldest first.
func (s *ItemStore) Notes(itemID int64) ([]model.ItemNote, error) {
	rows, err := s.db.Query(
		`SELECT id, item_id, author_id, text, created_at FROM item_notes WHERE item_id = ? ORDER BY id ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.ItemNote
	for rows.Next() {
		n, err := scanItemNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// MarkStatus records a per-user shopping status for an item. Statuses are
// only meaningful while the owning list is frozen.
func (s *ItemStore) MarkStatus(itemID, userID int64, status string) error {
	switch status {
	case model.StatusPending, model.StatusBought, model.StatusNotFound:
	default:
		return fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	item, err := s.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	var frozen int
	err = s.db.QueryRow(`SELECT frozen FROM lists WHERE id = ?`, item.ListID).Scan(&frozen)
	if err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if frozen == 0 {
		return fmt.Errorf("list not frozen: %w", ErrInvalidInput)
	}

	_, err = s.db.Exec(
		`INSERT INTO item_statuses (item_id, user_id, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (item_id, user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		itemID, userID, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark status: %w", err)
	}
	return nil
}

// GetStatus returns the user's status for an item, defaulting to pending
// when no row exists or the list is not frozen.
func (s *ItemStore) GetStatus(itemID, userID int64) (string, error) {
	item, err := s.GetByID(itemID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return model.StatusPending, nil
	}

	var frozen int
	if err := s.db.QueryRow(`SELECT frozen FROM lists WHERE id = ?`, item.ListID).Scan(&frozen); err != nil {
		return "", fmt.Errorf("check list: %w", err)
	}
	if frozen == 0 {
		return model.StatusPending, nil
	}

	var status string
	err = s.db.QueryRow(
		`SELECT status FROM item_statuses WHERE item_id = ? AND user_id = ?`,
		itemID, userID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return model.StatusPending, nil
	}
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	return status, nil
}
