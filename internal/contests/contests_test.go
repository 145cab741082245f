package contests

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/campus-reminders/internal/cache"
)

func TestSeries_Upcoming(t *testing.T) {
	biweekly := DefaultSeries[1]

	t.Run("before anchor", func(t *testing.T) {
		now := biweekly.Anchor.Add(-time.Hour)
		got := biweekly.Upcoming(now)
		require.Len(t, got, biweekly.Count)
		assert.Equal(t, "lc-biweekly-135", got[0].ID)
		assert.True(t, got[0].StartsAt.Equal(biweekly.Anchor))
		assert.Equal(t, "LeetCode Biweekly Contest 135", got[0].Name)
	})

	t.Run("exactly at an occurrence is excluded", func(t *testing.T) {
		got := biweekly.Upcoming(biweekly.Anchor)
		require.NotEmpty(t, got)
		assert.Equal(t, "lc-biweekly-136", got[0].ID)
		assert.True(t, got[0].StartsAt.Equal(biweekly.Anchor.Add(biweekly.Interval)))
	})

	t.Run("much later", func(t *testing.T) {
		now := biweekly.Anchor.Add(10*biweekly.Interval + time.Minute)
		got := biweekly.Upcoming(now)
		require.Len(t, got, 3)
		assert.Equal(t, "lc-biweekly-146", got[0].ID)
		assert.Equal(t, "lc-biweekly-148", got[2].ID)
		for _, c := range got {
			assert.True(t, c.StartsAt.After(now))
		}
	})

	t.Run("invalid series", func(t *testing.T) {
		assert.Empty(t, Series{Count: 3}.Upcoming(time.Now()))
	})
}

func TestPredictor_SortedAcrossSeries(t *testing.T) {
	now := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	p := NewPredictor(nil, func() time.Time { return now })

	got, err := p.ListUpcomingContests(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 11)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].StartsAt.Before(got[i-1].StartsAt), "contests must be ordered by start")
	}
}

const clistBody = `{
  "meta": {"limit": 100},
  "objects": [
    {"id": 2, "event": "Starters 210", "href": "https://www.codechef.com/START210", "start": "2026-10-15T14:30:00", "end": "2026-10-15T16:30:00", "duration": 7200, "resource_id": 2, "host": "codechef.com"},
    {"id": 1, "event": "Codeforces Round 1000", "href": "https://codeforces.com/contests/1000", "start": "2026-10-14T14:35:00", "end": "2026-10-14T16:35:00", "duration": 7200, "resource_id": 1, "host": "codeforces.com"},
    {"id": 3, "event": "Broken", "href": "x", "start": "not-a-date", "duration": 60, "resource_id": 999}
  ]
}`

func TestClistClient_ListUpcomingContests(t *testing.T) {
	var gotAuth, gotHosts string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHosts = r.URL.Query().Get("host__in")
		assert.Equal(t, "/contest/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("upcoming"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(clistBody))
	}))
	defer srv.Close()

	c := NewClistClient(srv.URL, "alice", "secret", 600, nil)
	require.NotNil(t, c)

	got, err := c.ListUpcomingContests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ApiKey alice:secret", gotAuth)
	assert.Equal(t, "codeforces.com,leetcode.com,codechef.com", gotHosts)

	require.Len(t, got, 2)
	assert.Equal(t, "clist-1", got[0].ID)
	assert.Equal(t, "CodeForces", got[0].Site)
	assert.Equal(t, time.Date(2026, 10, 14, 14, 35, 0, 0, time.UTC), got[0].StartsAt)
	assert.Equal(t, "clist-2", got[1].ID)
	assert.Equal(t, "CodeChef", got[1].Site)
	assert.Equal(t, 7200, got[1].DurationSeconds)
}

func TestClistClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClistClient(srv.URL, "alice", "bad", 600, nil)
	_, err := c.ListUpcomingContests(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewClistClient_Disabled(t *testing.T) {
	assert.Nil(t, NewClistClient("", "", "", 10, nil))
}

type fakeProvider struct {
	list  []Contest
	err   error
	calls int
}

func (f *fakeProvider) ListUpcomingContests(context.Context) ([]Contest, error) {
	f.calls++
	return f.list, f.err
}

func TestComposite(t *testing.T) {
	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	a := &fakeProvider{list: []Contest{{ID: "x", StartsAt: start.Add(time.Hour)}, {ID: "y", StartsAt: start}}}
	b := &fakeProvider{list: []Contest{{ID: "x", StartsAt: start.Add(time.Hour)}, {ID: "z", StartsAt: start.Add(2 * time.Hour)}}}
	broken := &fakeProvider{err: errors.New("boom")}

	t.Run("merges, dedupes and sorts", func(t *testing.T) {
		got, err := NewComposite(nil, a, broken, b).ListUpcomingContests(context.Background())
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"y", "x", "z"}, ids)
	})

	t.Run("all failing", func(t *testing.T) {
		_, err := NewComposite(nil, broken).ListUpcomingContests(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("nil providers skipped", func(t *testing.T) {
		c := NewComposite(nil, nil, a)
		assert.Equal(t, 1, c.Len())
	})
}

func TestCached(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	next := &fakeProvider{list: []Contest{
		{ID: "soon", StartsAt: now.Add(10 * time.Minute)},
		{ID: "later", StartsAt: now.Add(3 * time.Hour)},
	}}
	c := NewCached(next, cache.NewMemory(), time.Hour, nil)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	got, err := c.ListUpcomingContests(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	now = now.Add(20 * time.Minute)
	got, err = c.ListUpcomingContests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls, "second call must be served from cache")
	require.Len(t, got, 1)
	assert.Equal(t, "later", got[0].ID)
}

func TestCached_ZeroTTLBypasses(t *testing.T) {
	next := &fakeProvider{}
	c := NewCached(next, cache.NewMemory(), 0, nil)
	_, _ = c.ListUpcomingContests(context.Background())
	_, _ = c.ListUpcomingContests(context.Background())
	assert.Equal(t, 2, next.calls)
}
