package reminders

import "time"

// Window is the half-open interval [Start, End) during which an event is due.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsDue reports whether windowStart <= now < windowEnd.
func IsDue(now, windowStart, windowEnd time.Time) bool {
	return !now.Before(windowStart) && now.Before(windowEnd)
}

// Contains reports whether now falls inside w.
func (w Window) Contains(now time.Time) bool {
	return IsDue(now, w.Start, w.End)
}

// AssignmentWindow opens lead before the deadline. A non-positive lead
// uses DefaultAssignmentLead.
func AssignmentWindow(deadline time.Time, lead time.Duration) Window {
	if lead <= 0 {
		lead = DefaultAssignmentLead
	}
	return leadWindow(deadline, lead)
}

// LabWindow opens leadMinutes before the slot starts.
func LabWindow(occursAt time.Time, leadMinutes int) Window {
	if leadMinutes <= 0 {
		leadMinutes = DefaultLabLeadMinutes
	}
	return leadWindow(occursAt, time.Duration(leadMinutes)*time.Minute)
}

// ContestWindow opens lead before the contest starts. A non-positive lead
// uses DefaultContestLead.
func ContestWindow(startsAt time.Time, lead time.Duration) Window {
	if lead <= 0 {
		lead = DefaultContestLead
	}
	return leadWindow(startsAt, lead)
}

func leadWindow(at time.Time, lead time.Duration) Window {
	return Window{Start: at.Add(-lead), End: at}
}
