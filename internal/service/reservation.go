package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/gatherpoint/gatherpoint/internal/repository"
	"github.com/google/uuid"
)

// Bounded retry for store-level transaction conflicts. Business-rule
// failures are never retried; their outcome cannot change without the
// underlying state changing.
const (
	maxTxAttempts  = 3
	txRetryBackoff = 10 * time.Millisecond
)

// ReservationService is the attendance reservation engine. Every operation
// runs its checks and writes inside a single store transaction locked on the
// target event, so no RSVP is ever admitted against a stale view of capacity
// or membership.
type ReservationService struct {
	events repository.EventStore
}

// NewReservationService constructs a ReservationService.
func NewReservationService(events repository.EventStore) *ReservationService {
	return &ReservationService{events: events}
}

// Join reserves a seat on the event for userID.
//
// The duplicate and capacity checks are evaluated against the locked event
// row and the write commits in the same transaction, so of N concurrent
// joins for the last seat exactly one succeeds; the rest observe the
// committed counter and fail with ErrEventFull.
func (s *ReservationService) Join(ctx context.Context, eventID, userID string) (*model.Event, error) {
	if !validID(eventID) {
		return nil, ErrEventNotFound
	}
	return atomically(ctx, s.events, eventID, func(tx repository.EventTx) error {
		ev := tx.Event()
		if ev.HasAttendee(userID) {
			return ErrAlreadyRegistered
		}
		if ev.IsFull() {
			return ErrEventFull
		}
		return tx.AddAttendee(userID)
	})
}

// Leave releases userID's seat on the event.
func (s *ReservationService) Leave(ctx context.Context, eventID, userID string) (*model.Event, error) {
	if !validID(eventID) {
		return nil, ErrEventNotFound
	}
	return atomically(ctx, s.events, eventID, func(tx repository.EventTx) error {
		if !tx.Event().HasAttendee(userID) {
			return ErrNotRegistered
		}
		return tx.RemoveAttendee(userID)
	})
}

// UpdateCapacity changes the event's capacity. Only the creator may call it.
// Reducing capacity below current occupancy truncates the attendee set to
// the earliest-joined newCapacity members, atomically with the capacity
// write: no reader ever observes the new capacity with the old membership.
func (s *ReservationService) UpdateCapacity(ctx context.Context, eventID, callerID string, newCapacity int) (*model.Event, error) {
	if err := validateCapacity(newCapacity); err != nil {
		return nil, err
	}
	if !validID(eventID) {
		return nil, ErrEventNotFound
	}
	return atomically(ctx, s.events, eventID, func(tx repository.EventTx) error {
		ev := tx.Event()
		if ev.CreatorID != callerID {
			return ErrNotCreator
		}
		return reconcileCapacity(tx, ev, newCapacity)
	})
}

// reconcileCapacity applies a capacity change inside an event transaction,
// truncating membership first when the new capacity is below occupancy.
func reconcileCapacity(tx repository.EventTx, ev *model.Event, newCapacity int) error {
	if newCapacity < ev.CurrentAttendees {
		if err := tx.TruncateAttendees(newCapacity); err != nil {
			return err
		}
	}
	return tx.SetCapacity(newCapacity)
}

func validateCapacity(capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	if capacity > 100_000 {
		return ErrCapacityTooBig
	}
	return nil
}

// atomically runs one engine operation through the store, retrying bounded
// times on transaction conflicts before surfacing ErrContention.
func atomically(ctx context.Context, store repository.EventStore, eventID string, fn func(tx repository.EventTx) error) (*model.Event, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		ev, err := store.Atomically(ctx, eventID, fn)
		switch {
		case err == nil:
			return ev, nil
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrTxConflict):
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(txRetryBackoff * time.Duration(1<<attempt)):
			}
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrContention, lastErr)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
