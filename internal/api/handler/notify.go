package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/albapepper/campus-reminders/internal/api/respond"
	"github.com/albapepper/campus-reminders/internal/reminders"
)

// testNotificationRequest is the body of POST /api/v1/notifications/test.
type testNotificationRequest struct {
	To        string `json:"to"`
	Kind      string `json:"kind"`
	FirstName string `json:"firstName"`
}

// TestNotification sends one sample reminder email. Development only.
// @Summary Send a sample reminder
// @Description Renders a sample assignment, lab, or contest reminder and emails it. Available only when ENVIRONMENT=development.
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body testNotificationRequest true "Recipient and reminder kind"
// @Security ScanSecret
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /notifications/test [post]
func (h *Handler) TestNotification(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "CONFIGURATION_ERROR",
			"Email sender is not configured", "EMAIL_PROVIDER")
		return
	}

	var req testNotificationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.To))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_RECIPIENT", "A valid 'to' address is required")
		return
	}
	kind, err := reminders.ParseKind(req.Kind)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_KIND", "Unknown reminder kind", err.Error())
		return
	}

	now := h.now()
	ev := reminders.SampleEvent(kind, now)
	subject := reminders.SubjectFor(ev)
	body := reminders.BodyFor(reminders.UserRecord{FirstName: req.FirstName}, ev, now, h.cfg.Location)
	if err := h.dispatcher.Send(r.Context(), addr.Address, subject, body); err != nil {
		h.logger.Warn("Test notification failed", "to", addr.Address, "error", err)
		respond.WriteAppError(w, err)
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":  "sent",
		"to":      addr.Address,
		"subject": subject,
	})
}
