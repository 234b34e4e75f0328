package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ybenhayun/shuk/internal/category"
	"github.com/ybenhayun/shuk/internal/model"
)

type SuggestionStore struct {
	db         *sql.DB
	categories *CategoryStore
}

func NewSuggestionStore(db *sql.DB) *SuggestionStore {
	return &SuggestionStore{db: db, categories: NewCategoryStore(db)}
}

func scanItemSuggestion(scanner interface{ Scan(...any) error }) (*model.ItemSuggestion, error) {
	var sg model.ItemSuggestion
	var resolverID sql.NullInt64
	var resolvedAt sql.NullTime

	err := scanner.Scan(
		&sg.ID, &sg.ProposerID, &sg.CategoryKey, &sg.NameEN, &sg.NameHE,
		&sg.Status, &resolverID, &resolvedAt, &sg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolverID.Valid {
		sg.ResolverID = &resolverID.Int64
	}
	if resolvedAt.Valid {
		sg.ResolvedAt = &resolvedAt.Time
	}
	return &sg, nil
}

const itemSuggestionCols = `id, proposer_id, category_key, name_en, name_he, status, resolver_id, resolved_at, created_at`

func scanCategorySuggestion(scanner interface{ Scan(...any) error }) (*model.CategorySuggestion, error) {
	var sg model.CategorySuggestion
	var resolverID sql.NullInt64
	var resolvedAt sql.NullTime

	err := scanner.Scan(
		&sg.ID, &sg.ProposerID, &sg.Key, &sg.Emoji, &sg.NameEN, &sg.NameHE,
		&sg.Status, &resolverID, &resolvedAt, &sg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolverID.Valid {
		sg.ResolverID = &resolverID.Int64
	}
	if resolvedAt.Valid {
		sg.ResolvedAt = &resolvedAt.Time
	}
	return &sg, nil
}

const categorySuggestionCols = `id, proposer_id, key, emoji, name_en, name_he, status, resolver_id, resolved_at, created_at`

// SubmitItem queues an item suggestion. Submission-time dedup rejects names
// that already resolve as present and names with a pending suggestion for
// the same category.
func (s *SuggestionStore) SubmitItem(proposerID int64, categoryKey, nameEN, nameHE string) (*model.ItemSuggestion, error) {
	nameEN = strings.TrimSpace(nameEN)
	if nameEN == "" {
		return nil, ErrInvalidInput
	}

	effective, err := s.categories.EffectiveItems(categoryKey, category.DefaultLocale)
	if err != nil {
		return nil, err
	}
	if category.Contains(effective, nameEN) {
		return nil, ErrDuplicate
	}

	var pending int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM item_suggestions WHERE category_key = ? AND name_en = ? COLLATE NOCASE AND status = ?`,
		categoryKey, nameEN, model.SuggestionPending,
	).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("check pending: %w", err)
	}
	if pending > 0 {
		return nil, ErrDuplicate
	}

	result, err := s.db.Exec(
		`INSERT INTO item_suggestions (proposer_id, category_key, name_en, name_he) VALUES (?, ?, ?, ?)`,
		proposerID, categoryKey, nameEN, strings.TrimSpace(nameHE),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item suggestion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItem(id)
}

func (s *SuggestionStore) GetItem(id int64) (*model.ItemSuggestion, error) {
	row := s.db.QueryRow(`SELECT `+itemSuggestionCols+` FROM item_suggestions WHERE id = ?`, id)
	sg, err := scanItemSuggestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item suggestion: %w", err)
	}
	return sg, nil
}

func (s *SuggestionStore) ListPendingItems() ([]model.ItemSuggestion, error) {
	rows, err := s.db.Query(
		`SELECT `+itemSuggestionCols+` FROM item_suggestions WHERE status = ? ORDER BY id ASC`,
		model.SuggestionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending item suggestions: %w", err)
	}
	defer rows.Close()

	var out []model.ItemSuggestion
	for rows.Next() {
		sg, err := scanItemSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item suggestion: %w", err)
		}
		out = append(out, *sg)
	}
	return out, rows.Err()
}

// ApproveItem re-validates non-duplication at approval time and, only on
// success, materializes the dynamic category item and flips status in one
// transaction. On duplicate-at-approval the suggestion stays pending.
func (s *SuggestionStore) ApproveItem(id, resolverID int64) (*model.ItemSuggestion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+itemSuggestionCols+` FROM item_suggestions WHERE id = ?`, id)
	sg, err := scanItemSuggestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item suggestion: %w", err)
	}
	if model.Resolved(sg.Status) {
		return nil, fmt.Errorf("suggestion already %s: %w", sg.Status, ErrInvalidInput)
	}

	present, err := resolvedInTx(tx, sg.CategoryKey, sg.NameEN)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, ErrDuplicate
	}

	if _, err := tx.Exec(
		`INSERT INTO dynamic_category_items (category_key, name_en, name_he, added_by) VALUES (?, ?, ?, ?)`,
		sg.CategoryKey, sg.NameEN, sg.NameHE, sg.ProposerID,
	); err != nil {
		return nil, fmt.Errorf("materialize dynamic item: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE item_suggestions SET status = ?, resolver_id = ?, resolved_at = ? WHERE id = ?`,
		model.SuggestionApproved, resolverID, time.Now().UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("approve item suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve: %w", err)
	}
	return s.GetItem(id)
}

// resolvedInTx checks whether name already resolves as present for the
// category key, using the transaction's view of dynamic items and
// tombstones.
func resolvedInTx(tx *sql.Tx, key, name string) (bool, error) {
	static := category.StaticItems(key, category.DefaultLocale)

	rows, err := tx.Query(`SELECT name_en FROM dynamic_category_items WHERE category_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("list dynamic items: %w", err)
	}
	defer rows.Close()

	var dynamic []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return false, fmt.Errorf("scan dynamic item: %w", err)
		}
		dynamic = append(dynamic, n)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	trows, err := tx.Query(`SELECT name FROM category_tombstones WHERE category_key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("list tombstones: %w", err)
	}
	defer trows.Close()

	var tombstoned []string
	for trows.Next() {
		var n string
		if err := trows.Scan(&n); err != nil {
			return false, fmt.Errorf("scan tombstone: %w", err)
		}
		tombstoned = append(tombstoned, n)
	}
	if err := trows.Err(); err != nil {
		return false, err
	}

	return category.Contains(category.Resolve(static, dynamic, tombstoned), name), nil
}

// RejectItem is unconditional for pending suggestions. Terminal states are
// final.
func (s *SuggestionStore) RejectItem(id, resolverID int64) (*model.ItemSuggestion, error) {
	sg, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}
	if sg == nil {
		return nil, ErrNotFound
	}
	if model.Resolved(sg.Status) {
		return nil, fmt.Errorf("suggestion already %s: %w", sg.Status, ErrInvalidInput)
	}

	_, err = s.db.Exec(
		`UPDATE item_suggestions SET status = ?, resolver_id = ?, resolved_at = ? WHERE id = ?`,
		model.SuggestionRejected, resolverID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("reject item suggestion: %w", err)
	}
	return s.GetItem(id)
}

// SubmitCategory queues a custom-category suggestion.
func (s *SuggestionStore) SubmitCategory(proposerID int64, key, emoji, nameEN, nameHE string) (*model.CategorySuggestion, error) {
	key = strings.TrimSpace(key)
	nameEN = strings.TrimSpace(nameEN)
	if !validCategoryKey(key) || nameEN == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.categories.Get(key); err == nil {
		return nil, ErrDuplicate
	} else if err != ErrNotFound {
		return nil, err
	}

	var pending int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM category_suggestions WHERE key = ? AND status = ?`,
		key, model.SuggestionPending,
	).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("check pending: %w", err)
	}
	if pending > 0 {
		return nil, ErrDuplicate
	}

	result, err := s.db.Exec(
		`INSERT INTO category_suggestions (proposer_id, key, emoji, name_en, name_he) VALUES (?, ?, ?, ?, ?)`,
		proposerID, key, emoji, nameEN, strings.TrimSpace(nameHE),
	)
	if err != nil {
		return nil, fmt.Errorf("insert category suggestion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCategory(id)
}

func (s *SuggestionStore) GetCategory(id int64) (*model.CategorySuggestion, error) {
	row := s.db.QueryRow(`SELECT `+categorySuggestionCols+` FROM category_suggestions WHERE id = ?`, id)
	sg, err := scanCategorySuggestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category suggestion: %w", err)
	}
	return sg, nil
}

func (s *SuggestionStore) ListPendingCategories() ([]model.CategorySuggestion, error) {
	rows, err := s.db.Query(
		`SELECT `+categorySuggestionCols+` FROM category_suggestions WHERE status = ? ORDER BY id ASC`,
		model.SuggestionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending category suggestions: %w", err)
	}
	defer rows.Close()

	var out []model.CategorySuggestion
	for rows.Next() {
		sg, err := scanCategorySuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category suggestion: %w", err)
		}
		out = append(out, *sg)
	}
	return out, rows.Err()
}

// ApproveCategory materializes the custom category and flips status in one
// transaction, re-validating key uniqueness at approval time.
func (s *SuggestionStore) ApproveCategory(id, resolverID int64) (*model.CategorySuggestion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+categorySuggestionCols+` FROM category_suggestions WHERE id = ?`, id)
	sg, err := scanCategorySuggestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category suggestion: %w", err)
	}
	if model.Resolved(sg.Status) {
		return nil, fmt.Errorf("suggestion already %s: %w", sg.Status, ErrInvalidInput)
	}

	if _, ok := category.Lookup(sg.Key); ok {
		return nil, ErrDuplicate
	}
	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM custom_categories WHERE key = ?`, sg.Key).Scan(&existing); err != nil {
		return nil, fmt.Errorf("check custom key: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicate
	}

	if _, err := tx.Exec(
		`INSERT INTO custom_categories (key, emoji, name_en, name_he, created_by) VALUES (?, ?, ?, ?, ?)`,
		sg.Key, sg.Emoji, sg.NameEN, sg.NameHE, sg.ProposerID,
	); err != nil {
		return nil, fmt.Errorf("materialize custom category: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE category_suggestions SET status = ?, resolver_id = ?, resolved_at = ? WHERE id = ?`,
		model.SuggestionApproved, resolverID, time.Now().UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("approve category suggestion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve: %w", err)
	}
	return s.GetCategory(id)
}

func (s *SuggestionStore) RejectCategory(id, resolverID int64) (*model.CategorySuggestion, error) {
	sg, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if sg == nil {
		return nil, ErrNotFound
	}
	if model.Resolved(sg.Status) {
		return nil, fmt.Errorf("suggestion already %s: %w", sg.Status, ErrInvalidInput)
	}

	_, err = s.db.Exec(
		`UPDATE category_suggestions SET status = ?, resolver_id = ?, resolved_at = ? WHERE id = ?`,
		model.SuggestionRejected, resolverID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("reject category suggestion: %w", err)
	}
	return s.GetCategory(id)
}
