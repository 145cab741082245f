package reminders

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const displayLayout = "Mon, 02 Jan 2006 15:04 MST"

// SubjectFor returns the email subject line for ev.
func SubjectFor(ev CandidateEvent) string {
	switch ev.Kind {
	case KindAssignment:
		return "Assignment Due Soon: " + ev.Subject
	case KindLab:
		return "Lab Class Starting Soon: " + ev.Subject
	case KindContest:
		return "Contest Starting Soon: " + ev.Subject
	default:
		return "Reminder: " + ev.Subject
	}
}

// BodyFor returns the plain-text body for ev. Times are shown in loc.
func BodyFor(u UserRecord, ev CandidateEvent, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = defaultGreetingName
	}
	when := ev.OccursAt.In(loc).Format(displayLayout)
	in := humanizeUntil(ev.OccursAt.Sub(now))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	switch ev.Kind {
	case KindAssignment:
		fmt.Fprintf(&b, "This is a reminder that your assignment %q", ev.Subject)
		if ev.Detail != "" {
			fmt.Fprintf(&b, " for %s", ev.Detail)
		}
		fmt.Fprintf(&b, " is due in %s (%s).\n\nGood luck!", in, when)
	case KindLab:
		fmt.Fprintf(&b, "Your lab class %q starts in %s (%s).", ev.Subject, in, ev.OccursAt.In(loc).Format(clockLayout))
	case KindContest:
		fmt.Fprintf(&b, "The contest %q", ev.Subject)
		if ev.Detail != "" {
			fmt.Fprintf(&b, " on %s", ev.Detail)
		}
		fmt.Fprintf(&b, " starts in %s (%s).\n\nGet ready!", in, when)
		if ev.URL != "" {
			fmt.Fprintf(&b, " Here is the link: %s", ev.URL)
		}
	default:
		fmt.Fprintf(&b, "%s at %s.", ev.Subject, when)
	}
	return b.String()
}

// humanizeUntil renders a positive duration as "about 3 hours" or
// "10 minutes", rounding minutes up.
func humanizeUntil(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	switch {
	case minutes <= 1:
		return "less than a minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 120:
		return "about an hour"
	default:
		return fmt.Sprintf("about %d hours", int(math.Round(d.Hours())))
	}
}

// ParseKind maps "assignment", "lab", or "contest" to a SourceKind. Empty
// input defaults to assignment.
func ParseKind(s string) (SourceKind, error) {
	switch k := SourceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAssignment, nil
	case KindAssignment, KindLab, KindContest:
		return k, nil
	default:
		return "", fmt.Errorf("unknown reminder kind %q", s)
	}
}

// SampleEvent returns a representative event of kind, used for test emails.
func SampleEvent(kind SourceKind, now time.Time) CandidateEvent {
	ev := CandidateEvent{Kind: kind, EventID: "sample-" + string(kind)}
	switch kind {
	case KindLab:
		ev.Subject = "Sample LAB"
		ev.OccursAt = now.Add(DefaultLabLeadMinutes * time.Minute)
	case KindContest:
		ev.Subject = "Sample Contest"
		ev.Detail = "CodeForces"
		ev.URL = "https://codeforces.com/contests"
		ev.OccursAt = now.Add(45 * time.Minute)
	default:
		ev.Kind = KindAssignment
		ev.EventID = "sample-assignment"
		ev.Subject = "Sample Assignment"
		ev.Detail = "Demo Course"
		ev.OccursAt = now.Add(5 * time.Hour)
	}
	return ev
}
