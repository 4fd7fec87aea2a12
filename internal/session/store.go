package session

import (
	"errors"
	"sync"

	"github.com/vedasos/support-bot/internal/domain"
)

// ErrNoActiveDraft is returned when a user has no ticket draft in progress.
var ErrNoActiveDraft = errors.New("no active ticket draft")

// Store holds at most one in-flight ticket draft per user. All methods are
// safe for concurrent use; operations on the same user are serialized by the
// store lock, so a rapid double event cannot act on a stale read.
type Store struct {
	mu     sync.Mutex
	drafts map[int64]domain.TicketDraft
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{drafts: make(map[int64]domain.TicketDraft)}
}

// Begin creates a fresh draft for the user, unconditionally replacing any
// draft already in flight. A new dialog start always wins over an abandoned
// one.
func (s *Store) Begin(userID, groupID int64, groupName, submitterName string) domain.TicketDraft {
	draft := domain.TicketDraft{
		UserID:        userID,
		GroupID:       groupID,
		GroupName:     groupName,
		SubmitterName: submitterName,
		State:         domain.StateAwaitBranch,
	}

	s.mu.Lock()
	s.drafts[userID] = draft
	s.mu.Unlock()

	return draft
}

// Get returns a copy of the user's draft, so callers can only change the
// stored draft through Update.
func (s *Store) Get(userID int64) (domain.TicketDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	return draft, ok
}

// Update applies mutate to the current draft under the store lock and writes
// the result back. Returns ErrNoActiveDraft if the user has no draft, e.g.
// when a text reply arrives after the draft was already discarded.
func (s *Store) Update(userID int64, mutate func(*domain.TicketDraft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return ErrNoActiveDraft
	}

	mutate(&draft)
	s.drafts[userID] = draft
	return nil
}

// Take removes and returns the user's draft in one step. When two events race
// for the same draft, exactly one caller wins; the other sees no draft.
func (s *Store) Take(userID int64) (domain.TicketDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[userID]
	if ok {
		delete(s.drafts, userID)
	}
	return draft, ok
}

// Discard removes the user's draft. Discarding a missing draft is not an
// error.
func (s *Store) Discard(userID int64) {
	s.mu.Lock()
	delete(s.drafts, userID)
	s.mu.Unlock()
}
