package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vedasos/support-bot/internal/domain"
)

func TestBeginGetDiscard(t *testing.T) {
	s := NewStore()

	draft := s.Begin(42, 555, "Branch-12", "Ivan")
	if draft.State != domain.StateAwaitBranch {
		t.Errorf("expected fresh draft in %s, got %s", domain.StateAwaitBranch, draft.State)
	}

	got, ok := s.Get(42)
	if !ok {
		t.Fatal("expected draft for user 42")
	}
	if got.GroupID != 555 || got.GroupName != "Branch-12" || got.SubmitterName != "Ivan" {
		t.Errorf("unexpected draft fields: %+v", got)
	}

	s.Discard(42)
	if _, ok := s.Get(42); ok {
		t.Error("expected draft to be gone after discard")
	}
}

func TestUpdateWithoutDraft(t *testing.T) {
	s := NewStore()

	err := s.Update(99, func(d *domain.TicketDraft) { d.Branch = "x" })
	if err != ErrNoActiveDraft {
		t.Errorf("expected ErrNoActiveDraft, got %v", err)
	}
}

func TestDiscardIsIdempotent(t *testing.T) {
	s := NewStore()

	// Discarding a user that never began a dialog must not panic or error.
	s.Discard(7)
	s.Begin(7, 1, "g", "u")
	s.Discard(7)
	s.Discard(7)

	if _, ok := s.Get(7); ok {
		t.Error("expected no draft after discard")
	}
}

func TestUpdateWritesBack(t *testing.T) {
	s := NewStore()
	s.Begin(42, 555, "Branch-12", "Ivan")

	err := s.Update(42, func(d *domain.TicketDraft) {
		d.Branch = "Central"
		d.State = domain.StateAwaitDescription
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := s.Get(42)
	if got.Branch != "Central" || got.State != domain.StateAwaitDescription {
		t.Errorf("update not visible through Get: %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Begin(42, 555, "Branch-12", "Ivan")

	got, _ := s.Get(42)
	got.Branch = "mutated outside the store"

	stored, _ := s.Get(42)
	if stored.Branch != "" {
		t.Error("mutating a Get result must not change the stored draft")
	}
}

func TestTakeRemovesDraft(t *testing.T) {
	s := NewStore()
	s.Begin(42, 555, "Branch-12", "Ivan")

	draft, ok := s.Take(42)
	if !ok {
		t.Fatal("expected to take the draft")
	}
	if draft.GroupName != "Branch-12" {
		t.Errorf("unexpected draft fields: %+v", draft)
	}

	if _, ok := s.Get(42); ok {
		t.Error("expected draft to be gone after take")
	}
	if _, ok := s.Take(42); ok {
		t.Error("second take should find nothing")
	}
}

func TestConcurrentTakeHasOneWinner(t *testing.T) {
	s := NewStore()
	s.Begin(42, 555, "Branch-12", "Ivan")

	var wg sync.WaitGroup
	var wins int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Take(42); ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("take had %d winners, want exactly 1", wins)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewStore()
	s.Begin(1, 10, "g", "u")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = s.Update(1, func(d *domain.TicketDraft) {
				d.Description += "x"
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(1)
	if len(got.Description) != n {
		t.Errorf("expected %d appended updates, got %d", n, len(got.Description))
	}
}

func TestConcurrentUsersAreIsolated(t *testing.T) {
	s := NewStore()

	const users = 50
	var wg sync.WaitGroup
	wg.Add(users)
	for i := 0; i < users; i++ {
		userID := int64(i)
		go func() {
			defer wg.Done()
			s.Begin(userID, userID*10, fmt.Sprintf("group-%d", userID), "u")
			_ = s.Update(userID, func(d *domain.TicketDraft) {
				d.Branch = fmt.Sprintf("branch-%d", userID)
			})
		}()
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		userID := int64(i)
		got, ok := s.Get(userID)
		if !ok {
			t.Fatalf("missing draft for user %d", userID)
		}
		if got.Branch != fmt.Sprintf("branch-%d", userID) || got.GroupID != userID*10 {
			t.Errorf("draft for user %d carries another user's data: %+v", userID, got)
		}
	}
}

// A second dialog start replaces the first draft entirely; no field from the
// first draft may leak into the second.
func TestProperty_SecondBeginWins(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("second begin replaces the draft entirely", prop.ForAll(
		func(userID int64, firstGroup, secondGroup, branch string) bool {
			s := NewStore()

			s.Begin(userID, 1, firstGroup, "first")
			_ = s.Update(userID, func(d *domain.TicketDraft) {
				d.Branch = branch
				d.State = domain.StateAwaitDescription
			})

			s.Begin(userID, 2, secondGroup, "second")

			draft, ok := s.Get(userID)
			return ok &&
				draft.GroupID == 2 &&
				draft.GroupName == secondGroup &&
				draft.SubmitterName == "second" &&
				draft.Branch == "" &&
				draft.Description == "" &&
				draft.State == domain.StateAwaitBranch
		},
		gen.Int64(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
