package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
)

// MemoryStore is an in-memory implementation of EventStore and UserStore.
// It mirrors the Postgres store's locking discipline with a per-event mutex:
// Atomically serialises all mutations of one event while different events
// proceed independently. Used by the test suite; the production store is
// PostgreSQL.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*memEvent
	users  map[string]*model.User
}

type memEvent struct {
	mu      sync.Mutex
	event   model.Event // Attendees excluded, kept separately
	members []model.Attendee
	nextPos int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*memEvent),
		users:  make(map[string]*model.User),
	}
}

// Create inserts a new event.
func (s *MemoryStore) Create(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; ok {
		return ErrDuplicate
	}
	ev := *e
	ev.Attendees = nil
	s.events[e.ID] = &memEvent{event: ev, nextPos: 1}
	return nil
}

// GetByID returns a single event with its attendee list, or ErrNotFound.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	rec, ok := s.events[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.snapshot(), nil
}

// List returns events matching the filter, soonest first.
func (s *MemoryStore) List(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	return s.collect(func(e *model.Event) bool {
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(e.Title), q) &&
				!strings.Contains(strings.ToLower(e.Description), q) &&
				!strings.Contains(strings.ToLower(e.Location), q) {
				return false
			}
		}
		if !f.Date.IsZero() {
			day := f.Date.UTC().Truncate(24 * time.Hour)
			if e.Date.Before(day) || !e.Date.Before(day.Add(24*time.Hour)) {
				return false
			}
		}
		return true
	})
}

// ListByCreator returns the events a user created, soonest first.
func (s *MemoryStore) ListByCreator(_ context.Context, creatorID string) ([]model.Event, error) {
	return s.collect(func(e *model.Event) bool { return e.CreatorID == creatorID })
}

// ListAttending returns the events a user holds a seat on, soonest first.
func (s *MemoryStore) ListAttending(_ context.Context, userID string) ([]model.Event, error) {
	return s.collect(func(e *model.Event) bool { return e.HasAttendee(userID) })
}

// TitleExists reports whether an event with the given title already exists
// (case-insensitive).
func (s *MemoryStore) TitleExists(_ context.Context, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.events {
		if strings.EqualFold(rec.event.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes an event and all of its attendance records.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// Atomically runs fn while holding the event's mutex. Mutations are buffered
// on a working copy and only published on success, so an error from fn leaves
// the store in its pre-call state.
func (s *MemoryStore) Atomically(_ context.Context, eventID string, fn func(tx EventTx) error) (*model.Event, error) {
	s.mu.RLock()
	rec, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	tx := &memEventTx{
		snapshot: rec.snapshot(),
		event:    rec.event,
		members:  append([]model.Attendee(nil), rec.members...),
		nextPos:  rec.nextPos,
	}
	if err := fn(tx); err != nil {
		return nil, err
	}

	// Commit: the counter is recomputed from the set so the two can never
	// diverge, whatever sequence of mutations fn applied.
	tx.event.CurrentAttendees = len(tx.members)
	rec.event = tx.event
	rec.members = tx.members
	rec.nextPos = tx.nextPos
	return rec.snapshot(), nil
}

func (s *MemoryStore) collect(keep func(*model.Event) bool) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []model.Event
	for _, rec := range s.events {
		rec.mu.Lock()
		e := *rec.snapshot()
		rec.mu.Unlock()
		if keep(&e) {
			e.Attendees = nil
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// snapshot returns a copy of the event with attendees attached. Callers must
// hold rec.mu.
func (rec *memEvent) snapshot() *model.Event {
	e := rec.event
	e.Attendees = append([]model.Attendee(nil), rec.members...)
	return &e
}

// memEventTx mutates a working copy; MemoryStore.Atomically publishes it on
// success.
type memEventTx struct {
	snapshot *model.Event
	event    model.Event
	members  []model.Attendee
	nextPos  int64
}

func (t *memEventTx) Event() *model.Event { return t.snapshot }

func (t *memEventTx) AddAttendee(userID string) error {
	t.members = append(t.members, model.Attendee{
		UserID:   userID,
		Position: t.nextPos,
		JoinedAt: time.Now().UTC(),
	})
	t.nextPos++
	return nil
}

func (t *memEventTx) RemoveAttendee(userID string) error {
	for i, a := range t.members {
		if a.UserID == userID {
			t.members = append(t.members[:i], t.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *memEventTx) SetCapacity(capacity int) error {
	t.event.Capacity = capacity
	return nil
}

func (t *memEventTx) TruncateAttendees(keep int) error {
	if keep < len(t.members) {
		t.members = append([]model.Attendee(nil), t.members[:keep]...)
	}
	return nil
}

func (t *memEventTx) SetDetails(d EventDetails) error {
	t.event.Title = d.Title
	t.event.Description = d.Description
	t.event.Date = d.Date
	t.event.Location = d.Location
	t.event.ImageURL = d.ImageURL
	return nil
}

// Users returns the store's UserStore view.
func (s *MemoryStore) Users() UserStore { return (*memoryUserStore)(s) }

type memoryUserStore MemoryStore

func (s *memoryUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
