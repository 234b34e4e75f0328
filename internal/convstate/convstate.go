// Package convstate holds ephemeral per-user wizard state. Each user is
// either idle or in exactly one awaiting mode carrying the payload that
// mode needs. Clearing on every top-level command is the only
// cancellation mechanism; there is no TTL.
package convstate

import "sync"

// State is one conversation mode. The concrete type identifies what input
// the user owes next and carries the partially built wizard payload.
type State interface {
	isState()
}

// AwaitingItemName: the user picked a category and owes a free-text item
// name for the list.
type AwaitingItemName struct {
	ListID      int64
	CategoryKey string
}

// AwaitingItemNote: the user named an item and owes a quantity or note
// (or a skip).
type AwaitingItemNote struct {
	ListID      int64
	CategoryKey string
	Name        string
}

// AwaitingNoteText: the user owes note text for an existing item.
type AwaitingNoteText struct {
	ItemID int64
}

// AwaitingListName: the user owes a name for a new custom list.
type AwaitingListName struct{}

// AwaitingListRename: the user owes a new name for an existing list.
type AwaitingListRename struct {
	ListID int64
}

// AwaitingCategoryName: the user owes "key emoji name" details for a new
// custom category.
type AwaitingCategoryName struct{}

// AwaitingSuggestionName: the user owes an item name to suggest for the
// category.
type AwaitingSuggestionName struct {
	CategoryKey string
}

// AwaitingTranslation: the user owes the Hebrew name for a suggested
// item.
type AwaitingTranslation struct {
	CategoryKey string
	NameEN      string
}

// AwaitingCategorySuggestion: the user owes "key emoji name" details for
// a suggested category.
type AwaitingCategorySuggestion struct{}

// AwaitingBroadcast: the admin owes the broadcast text.
type AwaitingBroadcast struct{}

// AwaitingAdminCode: the user owes the admin elevation code.
type AwaitingAdminCode struct{}

func (AwaitingItemName) isState()           {}
func (AwaitingItemNote) isState()           {}
func (AwaitingNoteText) isState()           {}
func (AwaitingListName) isState()           {}
func (AwaitingListRename) isState()         {}
func (AwaitingCategoryName) isState()       {}
func (AwaitingSuggestionName) isState()     {}
func (AwaitingTranslation) isState()        {}
func (AwaitingCategorySuggestion) isState() {}
func (AwaitingBroadcast) isState()          {}
func (AwaitingAdminCode) isState()          {}

// Store is an in-memory map of user id to conversation state.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

func New() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get returns the user's current state, or (nil, false) when idle.
func (s *Store) Get(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	return st, ok
}

// Set replaces the user's state. A user is in at most one mode.
func (s *Store) Set(userID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Clear returns the user to idle. Safe to call when already idle.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
