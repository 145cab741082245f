package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsDue_HalfOpen(t *testing.T) {
	now := time.Date(2026, 10, 13, 12, 0, 0, 0, time.UTC)
	lead := 15 * time.Minute

	tests := []struct {
		name     string
		occursAt time.Time
		want     bool
	}{
		{name: "exactly lead away opens the window", occursAt: now.Add(lead), want: true},
		{name: "one second inside the window", occursAt: now.Add(lead - time.Second), want: true},
		{name: "middle of window", occursAt: now.Add(5 * time.Minute), want: true},
		{name: "occurs now is not due", occursAt: now, want: false},
		{name: "already past", occursAt: now.Add(-time.Minute), want: false},
		{name: "stale by days", occursAt: now.Add(-72 * time.Hour), want: false},
		{name: "far future", occursAt: now.Add(48 * time.Hour), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := LabWindow(tt.occursAt, 15)
			assert.Equal(t, tt.want, IsDue(now, w.Start, w.End))
			assert.Equal(t, tt.want, w.Contains(now))
		})
	}
}

func TestWindowHelpers(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	w := AssignmentWindow(at, 0)
	assert.Equal(t, at.Add(-24*time.Hour), w.Start)
	assert.Equal(t, at, w.End)

	w = AssignmentWindow(at, 2*time.Hour)
	assert.Equal(t, at.Add(-2*time.Hour), w.Start)

	w = LabWindow(at, 0)
	assert.Equal(t, at.Add(-15*time.Minute), w.Start)

	w = LabWindow(at, 30)
	assert.Equal(t, at.Add(-30*time.Minute), w.Start)

	w = ContestWindow(at, 0)
	assert.Equal(t, at.Add(-time.Hour), w.Start)
	assert.Equal(t, at, w.End)
}

func TestIsDue_EmptyWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, IsDue(now, now, now))
	assert.False(t, IsDue(now, now.Add(time.Minute), now))
}
