package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ybenhayun/shuk/internal/model"
)

type TemplateStore struct {
	db    *sql.DB
	items *ItemStore
	lists *ListStore
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db, items: NewItemStore(db), lists: NewListStore(db)}
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	var createdBy sql.NullInt64
	var lastUsedAt sql.NullTime
	var isSystem int

	err := scanner.Scan(
		&t.ID, &t.Name, &t.NameHE, &t.Description, &t.ListKind, &isSystem,
		&createdBy, &t.UseCount, &lastUsedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsSystem = isSystem != 0
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	if lastUsedAt.Valid {
		t.LastUsedAt = &lastUsedAt.Time
	}
	return &t, nil
}

const templateCols = `id, name, name_he, description, list_kind, is_system, created_by, use_count, last_used_at, created_at`

func (s *TemplateStore) GetByID(id int64) (*model.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListVisible returns system templates plus the user's own, system first.
func (s *TemplateStore) ListVisible(userID int64) ([]model.Template, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM templates WHERE is_system = 1 OR created_by = ?
		 ORDER BY is_system DESC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) Items(templateID int64) ([]model.TemplateItem, error) {
	rows, err := s.db.Query(
		`SELECT id, template_id, position, name, category_key, note FROM template_items
		 WHERE template_id = ? ORDER BY position ASC, id ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	var items []model.TemplateItem
	for rows.Next() {
		var it model.TemplateItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.Position, &it.Name, &it.CategoryKey, &it.Note); err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a user template with its ordered items.
func (s *TemplateStore) Create(name, nameHE, description, listKind string, createdBy int64, items []model.TemplateItem) (*model.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(items) == 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO templates (name, name_he, description, list_kind, is_system, created_by) VALUES (?, ?, ?, ?, 0, ?)`,
		name, nameHE, description, listKind, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, it := range items {
		if _, err := tx.Exec(
			`INSERT INTO template_items (template_id, position, name, category_key, note) VALUES (?, ?, ?, ?, ?)`,
			id, i, it.Name, it.CategoryKey, it.Note,
		); err != nil {
			return nil, fmt.Errorf("insert template item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create template: %w", err)
	}
	return s.GetByID(id)
}

// Apply inserts template items into a list using the item merge policy, so
// re-applying a template is idempotent with respect to item count. When
// selectedNames is non-empty only those names (case-insensitive) are
// candidates. The usage counter increments once per invocation regardless
// of how many items were actually inserted.
func (s *TemplateStore) Apply(templateID, listID int64, selectedNames []string, byUserID int64) (int, error) {
	t, err := s.GetByID(templateID)
	if err != nil {
		return 0, err
	}
	if t == nil {
		return 0, ErrNotFound
	}

	list, err := s.lists.GetByID(listID)
	if err != nil {
		return 0, err
	}
	if list == nil || !list.Active {
		return 0, ErrNotFound
	}
	if t.ListKind != "" && t.ListKind != list.Kind {
		return 0, fmt.Errorf("template targets %s lists: %w", t.ListKind, ErrInvalidInput)
	}

	items, err := s.Items(templateID)
	if err != nil {
		return 0, err
	}

	selected := make(map[string]struct{}, len(selectedNames))
	for _, n := range selectedNames {
		selected[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	added := 0
	for _, it := range items {
		if len(selected) > 0 {
			if _, ok := selected[strings.ToLower(it.Name)]; !ok {
				continue
			}
		}
		_, created, err := s.items.Add(listID, it.Name, it.CategoryKey, it.Note, byUserID)
		if err != nil {
			return added, fmt.Errorf("apply template item %q: %w", it.Name, err)
		}
		if created {
			added++
		}
	}

	if _, err := s.db.Exec(
		`UPDATE templates SET use_count = use_count + 1, last_used_at = ? WHERE id = ?`,
		time.Now().UTC(), templateID,
	); err != nil {
		return added, fmt.Errorf("bump template usage: %w", err)
	}

	return added, nil
}
