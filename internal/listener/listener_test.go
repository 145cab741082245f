package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/reminders"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		payload string
		want    string
		wantErr bool
	}{
		{payload: "", want: "notify"},
		{payload: `{"reason":"schedule edited","ts":1792000000}`, want: "schedule edited"},
		{payload: `{"ts":1}`, want: "notify"},
		{payload: "manual", want: "manual"},
		{payload: `{"reason":`, wantErr: true},
	}
	for _, tt := range tests {
		req, err := ParseRequest(tt.payload)
		if tt.wantErr {
			assert.Error(t, err, tt.payload)
			continue
		}
		require.NoError(t, err, tt.payload)
		assert.Equal(t, tt.want, req.Reason)
	}
}

type countingRunner struct {
	calls int
	err   error
}

func (c *countingRunner) Run(context.Context) (reminders.Report, error) {
	c.calls++
	return reminders.Report{RunID: "r"}, c.err
}

func TestHandle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, err := range []error{nil, reminders.ErrScanInProgress, errors.New("boom")} {
		r := &countingRunner{err: err}
		Handle(context.Background(), r, ScanRequest{Reason: "test"}, logger)
		assert.Equal(t, 1, r.calls)
	}
}
