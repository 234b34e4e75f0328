package model

import "time"

// Per-user item statuses, meaningful only while the owning list is frozen.
const (
	StatusPending  = "pending"
	StatusBought   = "bought"
	StatusNotFound = "not_found"
)

type Item struct {
	ID          int64     `json:"id"`
	ListID      int64     `json:"list_id"`
	Name        string    `json:"name"`
	CategoryKey string    `json:"category_key"`
	Note        string    `json:"note"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ItemNote struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	AuthorID  *int64    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ItemStatus struct {
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
