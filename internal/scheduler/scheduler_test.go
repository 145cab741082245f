package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (c *countingRunner) Run(context.Context) (reminders.Report, error) {
	c.calls.Add(1)
	return reminders.Report{}, c.err
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(context.Background(), "every now and then", &countingRunner{}, quiet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scan schedule")
}

func TestScheduler_Fires(t *testing.T) {
	runner := &countingRunner{}
	s, err := New(context.Background(), "@every 1s", runner, quiet())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestTick_LogsOutcomes(t *testing.T) {
	for _, err := range []error{nil, reminders.ErrScanInProgress, errors.New("db down")} {
		r := &countingRunner{err: err}
		tick(context.Background(), r, quiet())
		assert.Equal(t, int32(1), r.calls.Load())
	}
}
