package contests

import (
	"context"
	"fmt"
	"time"
)

const week = 7 * 24 * time.Hour

// Series is a contest that recurs on a fixed interval. Numbering advances
// by one per occurrence from a known anchor.
type Series struct {
	IDPrefix        string
	Name            string
	Site            string
	URL             string
	Anchor          time.Time
	AnchorNumber    int
	Interval        time.Duration
	DurationSeconds int
	Count           int
}

// DefaultSeries are the recurring contests predicted when clist.by is not
// configured or unreachable.
var DefaultSeries = []Series{
	{
		IDPrefix:        "lc-weekly",
		Name:            "LeetCode Weekly Contest",
		Site:            "LeetCode",
		URL:             "https://leetcode.com/contest/",
		Anchor:          time.Date(2024, time.July, 21, 2, 30, 0, 0, time.UTC),
		AnchorNumber:    407,
		Interval:        week,
		DurationSeconds: 5400,
		Count:           4,
	},
	{
		IDPrefix:        "lc-biweekly",
		Name:            "LeetCode Biweekly Contest",
		Site:            "LeetCode",
		URL:             "https://leetcode.com/contest/",
		Anchor:          time.Date(2024, time.July, 20, 14, 30, 0, 0, time.UTC),
		AnchorNumber:    135,
		Interval:        2 * week,
		DurationSeconds: 5400,
		Count:           3,
	},
	{
		IDPrefix:        "cc-starters",
		Name:            "CodeChef Starters",
		Site:            "CodeChef",
		URL:             "https://www.codechef.com/contests",
		Anchor:          time.Date(2024, time.July, 24, 14, 30, 0, 0, time.UTC),
		AnchorNumber:    144,
		Interval:        week,
		DurationSeconds: 7200,
		Count:           4,
	},
}

// Predictor generates upcoming occurrences of recurring series. It never
// fails.
type Predictor struct {
	series []Series
	now    func() time.Time
}

// NewPredictor creates a predictor over series. Nil series uses
// DefaultSeries.
func NewPredictor(series []Series, now func() time.Time) *Predictor {
	if series == nil {
		series = DefaultSeries
	}
	if now == nil {
		now = time.Now
	}
	return &Predictor{series: series, now: now}
}

// ListUpcomingContests returns the next occurrences of every series that
// start strictly after now.
func (p *Predictor) ListUpcomingContests(_ context.Context) ([]Contest, error) {
	now := p.now()
	var out []Contest
	for _, s := range p.series {
		out = append(out, s.Upcoming(now)...)
	}
	sortByStart(out)
	return out, nil
}

// Upcoming returns the next s.Count occurrences starting after now.
func (s Series) Upcoming(now time.Time) []Contest {
	if s.Interval <= 0 || s.Count <= 0 {
		return nil
	}
	first := floorDiv(now.Sub(s.Anchor), s.Interval) + 1
	out := make([]Contest, 0, s.Count)
	for i := first; i < first+int64(s.Count); i++ {
		number := s.AnchorNumber + int(i)
		out = append(out, Contest{
			ID:              fmt.Sprintf("%s-%d", s.IDPrefix, number),
			Name:            fmt.Sprintf("%s %d", s.Name, number),
			URL:             s.URL,
			StartsAt:        s.Anchor.Add(time.Duration(i) * s.Interval),
			DurationSeconds: s.DurationSeconds,
			Site:            s.Site,
		})
	}
	return out
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(d, interval time.Duration) int64 {
	q := int64(d / interval)
	if d%interval < 0 {
		q--
	}
	return q
}
