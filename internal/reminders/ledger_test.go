package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_HasFired(t *testing.T) {
	u := &UserRecord{
		ID: "u1",
		Assignments: []Assignment{
			{ID: "a1", Notified: true},
			{ID: "a2"},
		},
		Ledger: map[string]string{"lab-x": "2026-10-13", "cf-1": "2026-10-01"},
	}
	l := NewLedger(newFakeStore())

	assert.True(t, l.HasFired(u, CandidateEvent{Kind: KindAssignment, EventID: "a1"}))
	assert.False(t, l.HasFired(u, CandidateEvent{Kind: KindAssignment, EventID: "a2"}))
	assert.False(t, l.HasFired(u, CandidateEvent{Kind: KindAssignment, EventID: "missing"}))

	assert.True(t, l.HasFired(u, CandidateEvent{Kind: KindLab, EventID: "lab-x", Day: "2026-10-13"}))
	assert.False(t, l.HasFired(u, CandidateEvent{Kind: KindLab, EventID: "lab-x", Day: "2026-10-20"}), "stale date")
	assert.False(t, l.HasFired(u, CandidateEvent{Kind: KindContest, EventID: "cf-2", Day: "2026-10-01"}))
}

func TestLedger_MarkFired_LedgerEntry(t *testing.T) {
	store := newFakeStore(UserRecord{ID: "u1", Ledger: map[string]string{"old": "2026-01-01"}})
	l := NewLedger(store)
	u := store.user("u1")
	ev := CandidateEvent{Kind: KindContest, EventID: "cf-9", Day: "2026-10-13"}

	require.NoError(t, l.MarkFired(context.Background(), &u, ev, ev.Day))

	assert.Equal(t, "2026-10-13", u.Ledger["cf-9"])
	stored := store.user("u1")
	assert.Equal(t, "2026-10-13", stored.Ledger["cf-9"])
	assert.Equal(t, "2026-01-01", stored.Ledger["old"], "other keys untouched")
	require.Len(t, store.patches, 1)
	assert.Nil(t, store.patches[0].Assignments, "only ledger written")
	assert.True(t, l.HasFired(&u, ev))
}

func TestLedger_MarkFired_Assignment(t *testing.T) {
	deadline := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	store := newFakeStore(UserRecord{ID: "u1", Assignments: []Assignment{
		{ID: "a1", Title: "Essay", Deadline: deadline},
		{ID: "a2", Title: "Quiz", Deadline: deadline},
	}})
	l := NewLedger(store)
	u := store.user("u1")

	require.NoError(t, l.MarkFired(context.Background(), &u, CandidateEvent{Kind: KindAssignment, EventID: "a1"}, "2026-10-14"))

	stored := store.user("u1")
	assert.True(t, stored.Assignments[0].Notified)
	assert.False(t, stored.Assignments[1].Notified)
	assert.Equal(t, "Essay", stored.Assignments[0].Title)
	assert.True(t, u.Assignments[0].Notified)
	assert.Empty(t, store.patches[0].LedgerEntries)

	err := l.MarkFired(context.Background(), &u, CandidateEvent{Kind: KindAssignment, EventID: "gone"}, "2026-10-14")
	assert.Error(t, err)
}

func TestLedger_MarkFired_WriteErrorLeavesRecord(t *testing.T) {
	store := newFakeStore(UserRecord{ID: "u1", Assignments: []Assignment{{ID: "a1"}}})
	store.updateErr = func(string, UserPatch) error { return errors.New("write timeout") }
	l := NewLedger(store)
	u := store.user("u1")

	err := l.MarkFired(context.Background(), &u, CandidateEvent{Kind: KindAssignment, EventID: "a1"}, "2026-10-14")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write timeout")
	assert.False(t, u.Assignments[0].Notified)

	err = l.MarkFired(context.Background(), &u, CandidateEvent{Kind: KindLab, EventID: "lab-1"}, "2026-10-14")
	require.Error(t, err)
	assert.Empty(t, u.Ledger)
}
