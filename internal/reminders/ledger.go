package reminders

import (
	"context"
	"fmt"
)

// Ledger answers "has this event already fired for this user" and records
// successful sends. Assignments use their notified flag; labs and contests
// use the per-user eventId → lastFiredDate map.
type Ledger struct {
	store UserStore
}

// NewLedger creates a ledger that persists through store.
func NewLedger(store UserStore) *Ledger {
	return &Ledger{store: store}
}

// HasFired reports whether ev was already notified for u. Ledger entries
// only match when their date equals the event's own day.
func (l *Ledger) HasFired(u *UserRecord, ev CandidateEvent) bool {
	if ev.Kind == KindAssignment {
		for _, a := range u.Assignments {
			if a.ID == ev.EventID {
				return a.Notified
			}
		}
		return false
	}
	last, ok := u.Ledger[ev.EventID]
	return ok && last == ev.Day
}

// MarkFired persists that ev fired on onDate and updates u in place on
// success. Only the affected field is written.
func (l *Ledger) MarkFired(ctx context.Context, u *UserRecord, ev CandidateEvent, onDate string) error {
	if ev.Kind == KindAssignment {
		return l.markAssignment(ctx, u, ev.EventID)
	}

	patch := UserPatch{LedgerEntries: map[string]string{ev.EventID: onDate}}
	if err := l.store.UpdateUser(ctx, u.ID, patch); err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}
	if u.Ledger == nil {
		u.Ledger = make(map[string]string)
	}
	u.Ledger[ev.EventID] = onDate
	return nil
}

// markAssignment rewrites the assignment list with the matching entry
// flagged as notified.
func (l *Ledger) markAssignment(ctx context.Context, u *UserRecord, assignmentID string) error {
	updated := make([]Assignment, len(u.Assignments))
	copy(updated, u.Assignments)

	found := false
	for i := range updated {
		if updated[i].ID == assignmentID {
			updated[i].Notified = true
			found = true
		}
	}
	if !found {
		return fmt.Errorf("assignment %s not found", assignmentID)
	}

	if err := l.store.UpdateUser(ctx, u.ID, UserPatch{Assignments: updated}); err != nil {
		return fmt.Errorf("update assignments: %w", err)
	}
	u.Assignments = updated
	return nil
}
