package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/campus-reminders/internal/apperr"
	"github.com/albapepper/campus-reminders/internal/contests"
	"github.com/albapepper/campus-reminders/internal/email"
)

// Config controls windows, the scheduling zone, and concurrency.
type Config struct {
	Location              *time.Location
	LabKeywords           []string
	AssignmentLead        time.Duration
	ContestLead           time.Duration
	DefaultLabLeadMinutes int
	Workers               int
	UserTimeout           time.Duration
	// Deadline bounds the whole run. Zero means no deadline.
	Deadline time.Duration
}

// DefaultConfig returns production defaults in UTC.
func DefaultConfig() Config {
	return Config{
		Location:              time.UTC,
		LabKeywords:           DefaultLabKeywords,
		AssignmentLead:        DefaultAssignmentLead,
		ContestLead:           DefaultContestLead,
		DefaultLabLeadMinutes: DefaultLabLeadMinutes,
		Workers:               DefaultWorkers,
		UserTimeout:           DefaultUserTimeout,
		Deadline:              DefaultRunDeadline,
	}
}

// Job is the scan-and-dispatch orchestrator. Construct once at process
// start and call RunScan on every trigger.
type Job struct {
	store      UserStore
	dispatcher *Dispatcher
	contests   contests.Provider
	ledger     *Ledger
	sources    Sources
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes a Job.
type Option func(*Job)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// NewJob wires a job. contestProvider may be nil when contest reminders are
// not offered. Missing store or sender is a configuration error.
func NewJob(store UserStore, sender email.Sender, contestProvider contests.Provider, cfg Config, logger *slog.Logger, opts ...Option) (*Job, error) {
	if store == nil {
		return nil, apperr.Config("DATABASE_URL", "user store not configured")
	}
	if sender == nil {
		return nil, apperr.Config("EMAIL_PROVIDER", "no email sender configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.UserTimeout <= 0 {
		cfg.UserTimeout = DefaultUserTimeout
	}

	j := &Job{
		store:      store,
		dispatcher: NewDispatcher(sender, logger),
		contests:   contestProvider,
		ledger:     NewLedger(store),
		sources: Sources{
			Location:              cfg.Location,
			LabKeywords:           cfg.LabKeywords,
			AssignmentLead:        cfg.AssignmentLead,
			ContestLead:           cfg.ContestLead,
			DefaultLabLeadMinutes: cfg.DefaultLabLeadMinutes,
			Logger:                logger,
		},
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// RunScan scans every user once. It returns an error only for a failed user
// listing; per-user and per-event failures are counted in the report.
// Users not started before the run deadline are left for the next scan and
// the report is marked Truncated.
func (j *Job) RunScan(ctx context.Context) (Report, error) {
	now := j.now()
	started := time.Now()
	report := Report{RunID: uuid.NewString(), StartedAt: now}

	if j.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Deadline)
		defer cancel()
	}

	j.logger.Info("Scan started", "run_id", report.RunID, "workers", j.cfg.Workers)

	upcoming := j.upcomingContests(ctx)
	report.ContestsLoaded = len(upcoming)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(j.cfg.Workers)

	listErr := j.store.ListAllUsers(ctx, func(u UserRecord, rowErr error) {
		if rowErr != nil {
			readErr := &apperr.StorageReadError{UserID: u.ID, Err: rowErr}
			j.logger.Warn("skipping unreadable user", "user_id", u.ID, "error", rowErr)
			mu.Lock()
			report.UsersScanned++
			report.Failures++
			report.addErrors(readErr.Error())
			mu.Unlock()
			return
		}
		if ctx.Err() != nil {
			mu.Lock()
			report.Truncated = true
			mu.Unlock()
			return
		}

		g.Go(func() error {
			// g.Go blocks while the pool is full, so the deadline may
			// pass before this user starts.
			if ctx.Err() != nil {
				mu.Lock()
				report.Truncated = true
				mu.Unlock()
				return nil
			}
			outcome := j.scanUser(ctx, u, now, upcoming)
			mu.Lock()
			report.merge(outcome)
			mu.Unlock()
			return nil
		})
	})
	_ = g.Wait()

	report.Duration = time.Since(started)

	if listErr != nil {
		if ctx.Err() != nil {
			report.Truncated = true
			j.logger.Warn("Scan truncated", "run_id", report.RunID, "error", listErr)
		} else {
			err := &apperr.StorageReadError{Err: listErr}
			j.logger.Error("Scan failed", "run_id", report.RunID, "error", err)
			return report, err
		}
	}

	j.logger.Info("Scan complete", "summary", report.Summary())
	return report, nil
}

// upcomingContests fetches the contest list once per run. Failures are
// logged and treated as "no contests".
func (j *Job) upcomingContests(ctx context.Context) []contests.Contest {
	if j.contests == nil {
		return nil
	}
	list, err := j.contests.ListUpcomingContests(ctx)
	if err != nil {
		j.logger.Warn("contest list unavailable", "error", err)
		return nil
	}
	return list
}

// scanUser evaluates every event for one user under its own timeout.
func (j *Job) scanUser(ctx context.Context, u UserRecord, now time.Time, upcoming []contests.Contest) (out userOutcome) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("panic while scanning user",
				"user_id", u.ID, "panic", r, "stack", string(debug.Stack()))
			out.fail("user %s: panic: %v", u.ID, r)
		}
	}()

	if strings.TrimSpace(u.NotificationEmail) == "" {
		out.skipped = true
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, j.cfg.UserTimeout)
	defer cancel()

	for _, ev := range j.collect(u, now, upcoming) {
		if err := ctx.Err(); err != nil {
			out.fail("user %s: stopped before %s: %v", u.ID, ev.EventID, err)
			j.logger.Warn("user scan timed out", "user_id", u.ID, "error", err)
			break
		}
		j.processEvent(ctx, &u, ev, now, &out)
	}
	return out
}

// collect runs the enabled event sources.
func (j *Job) collect(u UserRecord, now time.Time, upcoming []contests.Contest) []CandidateEvent {
	var events []CandidateEvent
	if u.Preferences.AssignmentRemindersEnabled {
		events = append(events, j.sources.AssignmentDeadlines(u, now)...)
	}
	if u.Preferences.LabRemindersEnabled {
		events = append(events, j.sources.RecurringScheduleSlots(u, now)...)
	}
	if u.Preferences.ContestRemindersEnabled {
		events = append(events, j.sources.ContestStartTimes(u, now, upcoming)...)
	}
	return events
}

// processEvent sends one due, unfired event and marks it. The mark uses a
// context detached from the run deadline so a sent email is always
// recorded.
func (j *Job) processEvent(ctx context.Context, u *UserRecord, ev CandidateEvent, now time.Time, out *userOutcome) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("panic while processing event",
				"user_id", u.ID, "event_id", ev.EventID, "panic", r)
			out.fail("user %s event %s: panic: %v", u.ID, ev.EventID, r)
		}
	}()

	if !IsDue(now, ev.WindowStart, ev.WindowEnd) {
		return
	}
	if j.ledger.HasFired(u, ev) {
		return
	}

	subject := SubjectFor(ev)
	body := BodyFor(*u, ev, now, j.cfg.Location)
	if err := j.dispatcher.Send(ctx, u.NotificationEmail, subject, body); err != nil {
		var dispatchErr *apperr.DispatchError
		if errors.As(err, &dispatchErr) {
			dispatchErr.EventID = ev.EventID
		}
		j.logger.Warn("send failed",
			"user_id", u.ID, "event_id", ev.EventID, "kind", ev.Kind, "error", err)
		out.fail("user %s: %v", u.ID, err)
		return
	}
	out.sent++
	j.logger.Info("reminder sent", "user_id", u.ID, "event_id", ev.EventID, "kind", ev.Kind)

	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()
	if err := j.ledger.MarkFired(markCtx, u, ev, ev.Day); err != nil {
		writeErr := &apperr.StorageWriteError{UserID: u.ID, EventID: ev.EventID, Err: err}
		j.logger.Warn("reminder sent but not recorded; may repeat next scan", "error", writeErr)
		out.writeFailures++
		out.errors = append(out.errors, fmt.Sprint(writeErr))
	}
}
