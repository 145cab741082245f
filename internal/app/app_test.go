package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/config"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewContestProvider_Disabled(t *testing.T) {
	p, mem, rdb := NewContestProvider(context.Background(), &config.Config{}, quiet())
	assert.Nil(t, p)
	assert.Nil(t, mem)
	assert.Nil(t, rdb)
}

func TestNewContestProvider_PredictionsWithMemoryCache(t *testing.T) {
	cfg := &config.Config{ContestPredictionsEnabled: true, ContestCacheTTL: time.Minute}
	p, mem, rdb := NewContestProvider(context.Background(), cfg, quiet())
	require.NotNil(t, p)
	require.NotNil(t, mem)
	assert.Nil(t, rdb)

	list, err := p.ListUpcomingContests(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, list)
	assert.Equal(t, 1, mem.Stats()["active_keys"])
}
