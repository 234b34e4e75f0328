package model

import "time"

// Suggestion statuses. Approved and rejected are terminal.
const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
)

// ItemSuggestion proposes a new dynamic item for an existing category.
type ItemSuggestion struct {
	ID          int64      `json:"id"`
	ProposerID  int64      `json:"proposer_id"`
	CategoryKey string     `json:"category_key"`
	NameEN      string     `json:"name_en"`
	NameHE      string     `json:"name_he"`
	Status      string     `json:"status"`
	ResolverID  *int64     `json:"resolver_id"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CategorySuggestion proposes an entirely new custom category.
type CategorySuggestion struct {
	ID         int64      `json:"id"`
	ProposerID int64      `json:"proposer_id"`
	Key        string     `json:"key"`
	Emoji      string     `json:"emoji"`
	NameEN     string     `json:"name_en"`
	NameHE     string     `json:"name_he"`
	Status     string     `json:"status"`
	ResolverID *int64     `json:"resolver_id"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Resolved reports whether the suggestion reached a terminal state.
func Resolved(status string) bool {
	return status == SuggestionApproved || status == SuggestionRejected
}
