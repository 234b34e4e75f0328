package model

import "time"

// List kinds. Exactly one list has KindPrimary; it is never deletable.
const (
	KindPrimary = "primary"
	KindCustom  = "custom"
)

type List struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	Frozen      bool      `json:"frozen"`
	Active      bool      `json:"active"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
