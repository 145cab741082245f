// Package contests lists upcoming programming contests from the clist.by
// aggregator and from predicted recurring series (LeetCode Weekly and
// Biweekly, CodeChef Starters). Providers are best-effort: the scan job
// treats a failed listing as an empty one.
package contests

import (
	"context"
	"sort"
	"time"
)

// Contest is the normalized shape consumed by the scan job.
type Contest struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	StartsAt        time.Time `json:"start_time"`
	DurationSeconds int       `json:"duration"`
	Site            string    `json:"site"`
}

// EndsAt returns the contest end time.
func (c Contest) EndsAt() time.Time {
	return c.StartsAt.Add(time.Duration(c.DurationSeconds) * time.Second)
}

// Provider lists upcoming contests.
type Provider interface {
	ListUpcomingContests(ctx context.Context) ([]Contest, error)
}

// sortByStart orders contests by start time, then ID for stable output.
func sortByStart(list []Contest) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].StartsAt.Equal(list[j].StartsAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartsAt.Before(list[j].StartsAt)
	})
}
