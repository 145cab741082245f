package reminders

import (
	"fmt"
	"time"
)

// Report tracks the outcome of one scan.
type Report struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration_ns"`
	UsersScanned      int           `json:"users_scanned"`
	UsersSkipped      int           `json:"users_skipped"`
	NotificationsSent int           `json:"notifications_sent"`
	Failures          int           `json:"failures"`
	WriteFailures     int           `json:"write_failures"`
	ContestsLoaded    int           `json:"contests_loaded"`
	Truncated         bool          `json:"truncated"`
	Errors            []string      `json:"errors,omitempty"`
}

// Summary returns a human-readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"run=%s users=%d skipped=%d sent=%d failures=%d write_failures=%d contests=%d truncated=%v dur=%s",
		r.RunID, r.UsersScanned, r.UsersSkipped, r.NotificationsSent,
		r.Failures, r.WriteFailures, r.ContestsLoaded, r.Truncated,
		r.Duration.Round(time.Millisecond))
}

// userOutcome is one worker's contribution to the report.
type userOutcome struct {
	skipped       bool
	sent          int
	failures      int
	writeFailures int
	errors        []string
}

func (o *userOutcome) fail(format string, args ...interface{}) {
	o.failures++
	o.errors = append(o.errors, fmt.Sprintf(format, args...))
}

func (r *Report) merge(o userOutcome) {
	r.UsersScanned++
	if o.skipped {
		r.UsersSkipped++
	}
	r.NotificationsSent += o.sent
	r.Failures += o.failures
	r.WriteFailures += o.writeFailures
	r.addErrors(o.errors...)
}

func (r *Report) addErrors(msgs ...string) {
	for _, m := range msgs {
		if len(r.Errors) >= maxReportErrors {
			return
		}
		r.Errors = append(r.Errors, m)
	}
}
