package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/albapepper/campus-reminders/internal/contests"
	"github.com/albapepper/campus-reminders/internal/email"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --------------------------------------------------------------------------
// fakeStore
// --------------------------------------------------------------------------

type fakeStore struct {
	mu      sync.Mutex
	order   []string
	users   map[string]UserRecord
	patches []UserPatch

	listErr   error
	rowErrs   map[string]error
	updateErr func(id string, patch UserPatch) error
	// afterFirst runs between the first and remaining visits.
	afterFirst func(ctx context.Context)
}

func newFakeStore(users ...UserRecord) *fakeStore {
	s := &fakeStore{users: make(map[string]UserRecord), rowErrs: make(map[string]error)}
	for _, u := range users {
		s.order = append(s.order, u.ID)
		s.users[u.ID] = cloneUser(u)
	}
	return s
}

func (s *fakeStore) ListAllUsers(ctx context.Context, visit func(UserRecord, error)) error {
	if s.listErr != nil {
		return s.listErr
	}
	s.mu.Lock()
	snapshot := make([]UserRecord, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, cloneUser(s.users[id]))
	}
	s.mu.Unlock()

	for i, u := range snapshot {
		if i == 1 && s.afterFirst != nil {
			s.afterFirst(ctx)
		}
		if err := s.rowErrs[u.ID]; err != nil {
			visit(UserRecord{ID: u.ID}, err)
			continue
		}
		visit(u, nil)
	}
	return nil
}

func (s *fakeStore) UpdateUser(_ context.Context, id string, patch UserPatch) error {
	if s.updateErr != nil {
		if err := s.updateErr(id, patch); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	if patch.Assignments != nil {
		u.Assignments = append([]Assignment(nil), patch.Assignments...)
	}
	if len(patch.LedgerEntries) > 0 {
		if u.Ledger == nil {
			u.Ledger = make(map[string]string)
		}
		for k, v := range patch.LedgerEntries {
			u.Ledger[k] = v
		}
	}
	s.users[id] = u
	s.patches = append(s.patches, patch)
	return nil
}

func (s *fakeStore) user(id string) UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

func cloneUser(u UserRecord) UserRecord {
	out := u
	out.Assignments = append([]Assignment(nil), u.Assignments...)
	out.WeeklySchedule = append([]ScheduleSlot(nil), u.WeeklySchedule...)
	if u.Ledger != nil {
		out.Ledger = make(map[string]string, len(u.Ledger))
		for k, v := range u.Ledger {
			out.Ledger[k] = v
		}
	}
	return out
}

// --------------------------------------------------------------------------
// fakeSender
// --------------------------------------------------------------------------

type fakeSender struct {
	mu     sync.Mutex
	sent   []email.Message
	failOn func(msg email.Message) error
	onSend func(msg email.Message)
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.failOn != nil {
		if err := f.failOn(msg); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	if f.onSend != nil {
		f.onSend(msg)
	}
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Subject)
	}
	return out
}

func (f *fakeSender) sentTo(addr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if strings.EqualFold(m.To, addr) {
			n++
		}
	}
	return n
}

// --------------------------------------------------------------------------
// fakeContests
// --------------------------------------------------------------------------

type fakeContests struct {
	list []contests.Contest
	err  error
}

func (f fakeContests) ListUpcomingContests(context.Context) ([]contests.Contest, error) {
	return f.list, f.err
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Location = ist
	cfg.Deadline = 0
	return cfg
}

func newTestJob(store UserStore, sender email.Sender, cp contests.Provider, c *clock) *Job {
	j, err := NewJob(store, sender, cp, testConfig(), quietLogger(), WithClock(c.Now))
	if err != nil {
		panic(err)
	}
	return j
}
