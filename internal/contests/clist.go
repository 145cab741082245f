package contests

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultClistBaseURL = "https://clist.by/api/v4"
	clistTimeLayout     = "2006-01-02T15:04:05"
	clistPageLimit      = 100
)

// DefaultHosts are the contest hosts requested from clist.by.
var DefaultHosts = []string{"codeforces.com", "leetcode.com", "codechef.com"}

var siteByResourceID = map[int]string{
	1:   "CodeForces",
	2:   "CodeChef",
	102: "LeetCode",
}

// ClistClient is a rate-limited client for the clist.by v4 contest API.
type ClistClient struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	hosts      []string
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *slog.Logger
}

// NewClistClient creates a clist.by client. Returns nil if user or key is
// empty (aggregator disabled).
func NewClistClient(baseURL, user, apiKey string, requestsPerMinute int, logger *slog.Logger) *ClistClient {
	if user == "" || apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultClistBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	rps := float64(requestsPerMinute) / 60.0
	return &ClistClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: fmt.Sprintf("ApiKey %s:%s", user, apiKey),
		hosts:      DefaultHosts,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		now:        time.Now,
		logger:     logger,
	}
}

type clistResponse struct {
	Objects []clistContest `json:"objects"`
}

type clistContest struct {
	ID         int    `json:"id"`
	Event      string `json:"event"`
	Href       string `json:"href"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Duration   int    `json:"duration"`
	ResourceID int    `json:"resource_id"`
	Host       string `json:"host"`
}

// ListUpcomingContests fetches contests starting after now on the
// configured hosts, ordered by start time.
func (c *ClistClient) ListUpcomingContests(ctx context.Context) ([]Contest, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("upcoming", "true")
	params.Set("host__in", strings.Join(c.hosts, ","))
	params.Set("start__gt", c.now().UTC().Format(clistTimeLayout))
	params.Set("order_by", "start")
	params.Set("limit", strconv.Itoa(clistPageLimit))

	u := c.baseURL + "/contest/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request clist: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clist returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed clistResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]Contest, 0, len(parsed.Objects))
	for _, obj := range parsed.Objects {
		contest, err := obj.normalize()
		if err != nil {
			c.logger.Debug("skipping clist contest", "id", obj.ID, "error", err)
			continue
		}
		out = append(out, contest)
	}
	sortByStart(out)
	return out, nil
}

func (obj clistContest) normalize() (Contest, error) {
	start, err := time.ParseInLocation(clistTimeLayout, obj.Start, time.UTC)
	if err != nil {
		return Contest{}, fmt.Errorf("parse start %q: %w", obj.Start, err)
	}
	site, ok := siteByResourceID[obj.ResourceID]
	if !ok {
		site = "Other"
	}
	return Contest{
		ID:              fmt.Sprintf("clist-%d", obj.ID),
		Name:            obj.Event,
		URL:             obj.Href,
		StartsAt:        start,
		DurationSeconds: obj.Duration,
		Site:            site,
	}, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
