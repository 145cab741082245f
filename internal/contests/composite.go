package contests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/campus-reminders/internal/cache"
)

const cacheKey = "contests:upcoming"

// Composite merges several providers. A failing provider is logged and
// skipped; the call fails only when every provider fails.
type Composite struct {
	providers []Provider
	logger    *slog.Logger
}

// NewComposite merges the non-nil providers. Callers must not pass a typed
// nil such as a disabled *ClistClient.
func NewComposite(logger *slog.Logger, providers ...Provider) *Composite {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Composite{logger: logger}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Len returns the number of merged providers.
func (c *Composite) Len() int { return len(c.providers) }

// ListUpcomingContests returns the union of all providers, de-duplicated by
// ID and ordered by start time.
func (c *Composite) ListUpcomingContests(ctx context.Context) ([]Contest, error) {
	seen := make(map[string]bool)
	var out []Contest
	var errs []error

	for _, p := range c.providers {
		list, err := p.ListUpcomingContests(ctx)
		if err != nil {
			c.logger.Warn("contest provider failed", "provider", fmt.Sprintf("%T", p), "error", err)
			errs = append(errs, err)
			continue
		}
		for _, contest := range list {
			if seen[contest.ID] {
				continue
			}
			seen[contest.ID] = true
			out = append(out, contest)
		}
	}

	if len(c.providers) > 0 && len(errs) == len(c.providers) {
		return nil, fmt.Errorf("all contest providers failed: %w", errors.Join(errs...))
	}
	sortByStart(out)
	return out, nil
}

// Cached keeps the result of another provider in a cache.Store for ttl.
// Cache failures fall through to the wrapped provider.
type Cached struct {
	next   Provider
	store  cache.Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCached wraps next. A zero ttl disables caching.
func NewCached(next Provider, store cache.Store, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, store: store, ttl: ttl, now: time.Now, logger: logger}
}

// ListUpcomingContests serves from the cache when fresh. Contests that have
// already started are dropped from cached results.
func (c *Cached) ListUpcomingContests(ctx context.Context) ([]Contest, error) {
	if c.ttl <= 0 || c.store == nil {
		return c.next.ListUpcomingContests(ctx)
	}

	if data, ok, err := c.store.Get(ctx, cacheKey); err != nil {
		c.logger.Warn("contest cache read failed", "error", err)
	} else if ok {
		var list []Contest
		if err := json.Unmarshal(data, &list); err == nil {
			return c.dropStarted(list), nil
		}
		c.logger.Warn("contest cache entry unreadable", "key", cacheKey)
	}

	list, err := c.next.ListUpcomingContests(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(list); err == nil {
		if err := c.store.Set(ctx, cacheKey, data, c.ttl); err != nil {
			c.logger.Warn("contest cache write failed", "error", err)
		}
	}
	return list, nil
}

func (c *Cached) dropStarted(list []Contest) []Contest {
	now := c.now()
	out := list[:0]
	for _, contest := range list {
		if contest.StartsAt.After(now) {
			out = append(out, contest)
		}
	}
	return out
}
