package handler

import (
	"encoding/json"
	"net/http"

	"github.com/albapepper/campus-reminders/internal/api/respond"
	"github.com/albapepper/campus-reminders/internal/cache"
	"github.com/albapepper/campus-reminders/internal/contests"
)

// contestsResponse is the body of GET /api/v1/contests.
type contestsResponse struct {
	Contests []contests.Contest `json:"contests"`
	Count    int                `json:"count"`
}

// ListContests returns upcoming contests from every configured provider.
// @Summary Upcoming programming contests
// @Description Lists upcoming Codeforces, CodeChef, and LeetCode contests sorted by start time. Supports If-None-Match.
// @Tags contests
// @Produce json
// @Success 200 {object} contestsResponse
// @Success 304 "Not modified"
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /contests [get]
func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	if h.contests == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "CONTESTS_DISABLED", "No contest provider is configured")
		return
	}

	list, err := h.contests.ListUpcomingContests(r.Context())
	if err != nil {
		h.logger.Warn("Contest list unavailable", "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Contest list unavailable", err.Error())
		return
	}
	if list == nil {
		list = []contests.Contest{}
	}

	data, err := json.Marshal(contestsResponse{Contests: list, Count: len(list)})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode contests")
		return
	}

	etag := cache.ComputeETag(data)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, h.cfg.ContestCacheTTL)
}
