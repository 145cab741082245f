package reminders

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/albapepper/campus-reminders/internal/contests"
)

// Sources turns a user record into candidate events. All lab arithmetic
// happens in Location, the single scheduling time zone.
type Sources struct {
	Location              *time.Location
	LabKeywords           []string
	AssignmentLead        time.Duration
	ContestLead           time.Duration
	DefaultLabLeadMinutes int
	Logger                *slog.Logger
}

// AssignmentDeadlines emits one event per assignment that has a deadline
// and has not been notified yet.
func (s Sources) AssignmentDeadlines(u UserRecord, _ time.Time) []CandidateEvent {
	var out []CandidateEvent
	for _, a := range u.Assignments {
		if a.Notified || a.Deadline.IsZero() || a.ID == "" {
			continue
		}
		w := AssignmentWindow(a.Deadline, s.AssignmentLead)
		out = append(out, CandidateEvent{
			UserID:      u.ID,
			Kind:        KindAssignment,
			EventID:     a.ID,
			OccursAt:    a.Deadline,
			Subject:     a.Title,
			WindowStart: w.Start,
			WindowEnd:   w.End,
			Day:         s.dayOf(a.Deadline),
			Detail:      a.Subject,
		})
	}
	return out
}

// RecurringScheduleSlots emits today's lab slots, plus tomorrow's slots
// whose reminder window opens before midnight (a 00:05 lab is reminded at
// 23:50). The event ID and ledger day are the slot's own date so the same
// slot fires again on its next weekday.
func (s Sources) RecurringScheduleSlots(u UserRecord, now time.Time) []CandidateEvent {
	local := now.In(s.location())
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location())
	tomorrow := today.AddDate(0, 0, 1)
	lead := u.Preferences.LabLeadMinutes(s.DefaultLabLeadMinutes)

	var out []CandidateEvent
	for _, day := range []time.Time{today, tomorrow} {
		date := day.Format(dateLayout)
		for _, slot := range u.WeeklySchedule {
			if slot.DayOfWeek != day.Weekday() || !IsLabLabel(slot.Label, s.keywords()) {
				continue
			}
			hour, minute, err := ParseClock(slot.StartTime)
			if err != nil {
				s.log().Debug("skipping lab slot", "user_id", u.ID, "label", slot.Label,
					"start_time", slot.StartTime, "error", err)
				continue
			}
			occursAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.location())
			w := LabWindow(occursAt, lead)
			if day.Equal(tomorrow) && !w.Start.Before(tomorrow) {
				continue
			}
			out = append(out, CandidateEvent{
				UserID:      u.ID,
				Kind:        KindLab,
				EventID:     LabEventID(slot.Label, slot.StartTime, date),
				OccursAt:    occursAt,
				Subject:     strings.TrimSpace(slot.Label),
				WindowStart: w.Start,
				WindowEnd:   w.End,
				Day:         date,
			})
		}
	}
	return out
}

// ContestStartTimes emits one event per upcoming contest.
func (s Sources) ContestStartTimes(u UserRecord, _ time.Time, upcoming []contests.Contest) []CandidateEvent {
	out := make([]CandidateEvent, 0, len(upcoming))
	for _, c := range upcoming {
		if c.ID == "" || c.StartsAt.IsZero() {
			continue
		}
		w := ContestWindow(c.StartsAt, s.ContestLead)
		out = append(out, CandidateEvent{
			UserID:      u.ID,
			Kind:        KindContest,
			EventID:     c.ID,
			OccursAt:    c.StartsAt,
			Subject:     c.Name,
			WindowStart: w.Start,
			WindowEnd:   w.End,
			Day:         s.dayOf(c.StartsAt),
			Detail:      c.Site,
			URL:         c.URL,
		})
	}
	return out
}

// IsLabLabel reports whether label contains any keyword, ignoring case.
func IsLabLabel(label string, keywords []string) bool {
	upper := strings.ToUpper(label)
	for _, k := range keywords {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" && strings.Contains(upper, k) {
			return true
		}
	}
	return false
}

// LabEventID derives a stable ID for one slot on one date.
func LabEventID(label, startTime, date string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(label) + "|" + strings.TrimSpace(startTime) + "|" + date))
	return labEventIDPrefix + hex.EncodeToString(sum[:])[:labEventIDHashHexChars]
}

// ParseClock parses "HH:MM" (24h). A bare hour such as "9" is accepted.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		s += ":00"
	}
	t, err := time.Parse(clockLayout, padHour(s))
	if err != nil {
		return 0, 0, fmt.Errorf("parse start time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// padHour turns "9:05" into "09:05" for the fixed-width layout.
func padHour(s string) string {
	if i := strings.IndexByte(s, ':'); i == 1 {
		return "0" + s
	}
	return s
}

func (s Sources) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Sources) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Sources) keywords() []string {
	if len(s.LabKeywords) == 0 {
		return DefaultLabKeywords
	}
	return s.LabKeywords
}

func (s Sources) dayOf(t time.Time) string {
	return t.In(s.location()).Format(dateLayout)
}
