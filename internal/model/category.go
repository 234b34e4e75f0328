package model

import "time"

// CustomCategory is a category created by an admin or an approved
// suggestion. It has no static items, only dynamic ones.
type CustomCategory struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Emoji     string    `json:"emoji"`
	NameEN    string    `json:"name_en"`
	NameHE    string    `json:"name_he"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// DynamicItem is an item name made available under a category key by admin
// action or suggestion approval.
type DynamicItem struct {
	ID          int64     `json:"id"`
	CategoryKey string    `json:"category_key"`
	NameEN      string    `json:"name_en"`
	NameHE      string    `json:"name_he"`
	AddedBy     *int64    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tombstone marks a static item name as permanently hidden from a
// category's effective item set.
type Tombstone struct {
	ID          int64     `json:"id"`
	CategoryKey string    `json:"category_key"`
	Name        string    `json:"name"`
	RemovedBy   *int64    `json:"removed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
