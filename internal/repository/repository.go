// Package repository defines the persistence contracts for the event RSVP
// service and provides two implementations: PostgreSQL (pgx, the production
// store) and an in-memory store used by tests.
//
// The reservation engine's atomicity contract lives in Atomically: every
// check-then-write sequence against one event runs inside a single store
// transaction that holds an exclusive lock on that event, so the predicates a
// mutation was validated against cannot go stale before the write commits.
// Operations on different events never block one another.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned on a unique-constraint violation (e.g. email).
var ErrDuplicate = errors.New("duplicate record")

// ErrTxConflict is returned when the store aborts a transaction due to
// contention (serialization failure or deadlock). It is retryable, unlike
// business-rule failures which are decided inside the transaction.
var ErrTxConflict = errors.New("transaction conflict")

// EventDetails carries the descriptive, non-reservation fields of an event
// for atomic replacement inside an event transaction.
type EventDetails struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	ImageURL    string
}

// EventTx is the set of mutations available while holding the exclusive lock
// on one event. All mutations take effect atomically when the enclosing
// Atomically call commits; returning an error from the callback rolls every
// one of them back.
type EventTx interface {
	// Event returns the locked snapshot, attendees ordered earliest-joined
	// first. The snapshot does not reflect mutations made through this tx.
	Event() *model.Event

	// AddAttendee appends userID to the attendee set and increments the
	// attendee counter in the same atomic unit.
	AddAttendee(userID string) error

	// RemoveAttendee removes userID and decrements the counter.
	RemoveAttendee(userID string) error

	// SetCapacity updates the event's capacity.
	SetCapacity(capacity int) error

	// TruncateAttendees drops all but the keep earliest-joined attendees and
	// sets the counter to keep.
	TruncateAttendees(keep int) error

	// SetDetails replaces the event's descriptive fields.
	SetDetails(d EventDetails) error
}

// EventStore is the durable record of events and attendee membership.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Event, error)
	ListAttending(ctx context.Context, userID string) ([]model.Event, error)
	TitleExists(ctx context.Context, title string) (bool, error)

	// Delete removes the event and all of its attendance records.
	Delete(ctx context.Context, id string) error

	// Atomically runs fn while holding an exclusive lock on the event,
	// commits its mutations as one unit, and returns the event as re-read
	// inside the same transaction after the mutations applied. It returns
	// ErrNotFound if the event does not exist, ErrTxConflict if the store
	// aborted the transaction, or the error returned by fn (with all
	// mutations rolled back).
	Atomically(ctx context.Context, eventID string, fn func(tx EventTx) error) (*model.Event, error)
}

// UserStore is the durable record of accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
