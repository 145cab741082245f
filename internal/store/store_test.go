package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

func TestDecodeUser(t *testing.T) {
	prefs := []byte(`{"assignmentRemindersEnabled":true,"labRemindersEnabled":true,"leadTimeMinutes":20}`)
	assignments := []byte(`[{"id":"a1","title":"Essay","subject":"HIST","deadline":"2026-10-14T09:00:00Z","notified":false}]`)
	schedule := []byte(`[{"dayOfWeek":2,"startTime":"14:00","label":"DSP LAB"}]`)
	ledger := []byte(`{"lab-abc":"2026-10-13"}`)

	u, err := decodeUser("u1", "Asha", "asha@example.edu", prefs, assignments, schedule, ledger)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.Preferences.AssignmentRemindersEnabled)
	assert.False(t, u.Preferences.ContestRemindersEnabled)
	assert.Equal(t, 20, u.Preferences.LeadTimeMinutes)
	require.Len(t, u.Assignments, 1)
	assert.True(t, u.Assignments[0].Deadline.Equal(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))
	require.Len(t, u.WeeklySchedule, 1)
	assert.Equal(t, time.Tuesday, u.WeeklySchedule[0].DayOfWeek)
	assert.Equal(t, "2026-10-13", u.Ledger["lab-abc"])
}

func TestDecodeUser_NullColumns(t *testing.T) {
	u, err := decodeUser("u2", "", "", nil, []byte("null"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, reminders.Preferences{}, u.Preferences)
	assert.Empty(t, u.Assignments)
	assert.Nil(t, u.Ledger)
}

func TestDecodeUser_MalformedColumn(t *testing.T) {
	u, err := decodeUser("u3", "Ravi", "ravi@example.edu", nil, []byte(`{"not":"a list"}`), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode assignments")
	assert.Equal(t, "u3", u.ID)
	assert.Empty(t, u.NotificationEmail, "partial records are not returned")
}

type listOnlyStore struct {
	users   []reminders.UserRecord
	updates int
}

func (l *listOnlyStore) ListAllUsers(_ context.Context, visit func(reminders.UserRecord, error)) error {
	for _, u := range l.users {
		visit(u, nil)
	}
	return nil
}

func (l *listOnlyStore) UpdateUser(context.Context, string, reminders.UserPatch) error {
	l.updates++
	return errors.New("should not be called")
}

func TestReadOnly(t *testing.T) {
	next := &listOnlyStore{users: []reminders.UserRecord{{ID: "a"}, {ID: "b"}}}
	ro := NewReadOnly(next, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var seen []string
	require.NoError(t, ro.ListAllUsers(context.Background(), func(u reminders.UserRecord, err error) {
		seen = append(seen, u.ID)
	}))
	assert.Equal(t, []string{"a", "b"}, seen)

	err := ro.UpdateUser(context.Background(), "a", reminders.UserPatch{LedgerEntries: map[string]string{"x": "2026-10-13"}})
	assert.NoError(t, err)
	assert.Zero(t, next.updates)
}
