package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/albapepper/campus-reminders/internal/api/respond"
	"github.com/albapepper/campus-reminders/internal/reminders"
)

// TriggerScan runs one scan and returns its report.
// @Summary Trigger a reminder scan
// @Description Scans every user once and emails due reminders. With async=true the scan runs in the background and the call returns 202 immediately.
// @Tags scan
// @Produce json
// @Param async query bool false "Return before the scan finishes"
// @Security ScanSecret
// @Success 200 {object} reminders.Report
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /scan [post]
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "CONFIGURATION_ERROR",
			"Scan job is not configured", "EMAIL_PROVIDER")
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := h.runner.Start(context.WithoutCancel(r.Context())); err != nil {
			respond.WriteError(w, http.StatusConflict, "SCAN_IN_PROGRESS", "A scan is already running")
			return
		}
		respond.WriteJSONObject(w, http.StatusAccepted, map[string]interface{}{
			"status": "accepted",
		})
		return
	}

	report, err := h.runner.Run(r.Context())
	if errors.Is(err, reminders.ErrScanInProgress) {
		respond.WriteError(w, http.StatusConflict, "SCAN_IN_PROGRESS", "A scan is already running")
		return
	}
	if err != nil {
		h.logger.Error("Triggered scan failed", "error", err)
		respond.WriteAppError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// LastScan returns the most recent scan report.
// @Summary Last scan report
// @Description Returns the report of the most recent scan from this process, or the last persisted run.
// @Tags scan
// @Produce json
// @Security ScanSecret
// @Success 200 {object} reminders.Report
// @Failure 404 {object} respond.ErrorResponse
// @Router /scan/last [get]
func (h *Handler) LastScan(w http.ResponseWriter, r *http.Request) {
	if h.runner != nil {
		if report, ok := h.runner.Last(); ok {
			respond.WriteJSONObject(w, http.StatusOK, report)
			return
		}
	}
	if h.history != nil {
		report, ok, err := h.history.LastRun(r.Context())
		if err != nil {
			h.logger.Warn("Failed to load last scan run", "error", err)
			respond.WriteError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Scan history could not be read")
			return
		}
		if ok {
			respond.WriteJSONObject(w, http.StatusOK, report)
			return
		}
	}
	respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No scan has run yet")
}
