// Package reminders scans user records for assignment deadlines, recurring
// lab slots, and programming contests, and emails one reminder per due event.
//
// Pipeline: list users → collect candidate events → window check → ledger
// check → dispatch → mark fired. The job is stateless between invocations
// except through the persisted ledger and assignment notified flags.
package reminders

import (
	"context"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	DefaultAssignmentLead = 24 * time.Hour
	DefaultContestLead    = 60 * time.Minute
	DefaultLabLeadMinutes = 15
	DefaultWorkers        = 4
	DefaultUserTimeout    = 30 * time.Second
	DefaultRunDeadline    = 4 * time.Minute
)

const (
	markTimeout            = 10 * time.Second
	maxReportErrors        = 50
	dateLayout             = "2006-01-02"
	clockLayout            = "15:04"
	defaultGreetingName    = "User"
	labEventIDPrefix       = "lab-"
	labEventIDHashHexChars = 16
)

// DefaultLabKeywords matches slot labels such as "DSP LAB".
var DefaultLabKeywords = []string{"LAB"}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Preferences are the per-user reminder switches.
type Preferences struct {
	AssignmentRemindersEnabled bool `json:"assignmentRemindersEnabled"`
	LabRemindersEnabled        bool `json:"labRemindersEnabled"`
	ContestRemindersEnabled    bool `json:"contestRemindersEnabled"`
	LeadTimeMinutes            int  `json:"leadTimeMinutes"`
}

// LabLeadMinutes returns the user's lab lead time, or fallback when unset.
func (p Preferences) LabLeadMinutes(fallback int) int {
	if p.LeadTimeMinutes > 0 {
		return p.LeadTimeMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultLabLeadMinutes
}

// Assignment is a one-off deadline. Notified is set by the job after the
// reminder has been sent.
type Assignment struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subject  string    `json:"subject"`
	Deadline time.Time `json:"deadline"`
	Notified bool      `json:"notified"`
}

// ScheduleSlot is a weekly recurring class. StartTime is "HH:MM" (24h) in
// the scheduling time zone.
type ScheduleSlot struct {
	DayOfWeek time.Weekday `json:"dayOfWeek"`
	StartTime string       `json:"startTime"`
	Label     string       `json:"label"`
}

// UserRecord is one account as seen by the scan job.
type UserRecord struct {
	ID                string
	FirstName         string
	NotificationEmail string
	Preferences       Preferences
	Assignments       []Assignment
	WeeklySchedule    []ScheduleSlot
	// Ledger maps lab/contest event IDs to the ISO date they last fired.
	Ledger map[string]string
}

// UserPatch is a partial update. Nil fields are left untouched;
// LedgerEntries are merged into the existing ledger key by key.
type UserPatch struct {
	Assignments   []Assignment
	LedgerEntries map[string]string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Assignments == nil && len(p.LedgerEntries) == 0
}

// SourceKind identifies which adapter produced a candidate event.
type SourceKind string

const (
	KindAssignment SourceKind = "assignment"
	KindLab        SourceKind = "lab"
	KindContest    SourceKind = "contest"
)

// CandidateEvent is one potential reminder, recomputed every scan.
type CandidateEvent struct {
	UserID      string
	Kind        SourceKind
	EventID     string
	OccursAt    time.Time
	Subject     string
	WindowStart time.Time
	WindowEnd   time.Time
	// Day is the event's own calendar date in the scheduling time zone.
	Day string
	// Detail carries source-specific text for the message body
	// (assignment course, contest site).
	Detail string
	URL    string
}

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// UserStore lists and partially updates user records.
type UserStore interface {
	// ListAllUsers streams every user to visit. A non-nil rowErr means that
	// user's record could not be decoded; the returned error means the
	// listing itself failed.
	ListAllUsers(ctx context.Context, visit func(u UserRecord, rowErr error)) error
	UpdateUser(ctx context.Context, id string, patch UserPatch) error
}
