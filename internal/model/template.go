package model

import "time"

type Template struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	NameHE      string     `json:"name_he"`
	Description string     `json:"description"`
	ListKind    string     `json:"list_kind"`
	IsSystem    bool       `json:"is_system"`
	CreatedBy   *int64     `json:"created_by"`
	UseCount    int64      `json:"use_count"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type TemplateItem struct {
	ID          int64  `json:"id"`
	TemplateID  int64  `json:"template_id"`
	Position    int    `json:"position"`
	Name        string `json:"name"`
	CategoryKey string `json:"category_key"`
	Note        string `json:"note"`
}
