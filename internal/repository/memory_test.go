package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, store *MemoryStore, capacity int) *model.Event {
	t.Helper()
	event := &model.Event{
		ID:        uuid.New().String(),
		Title:     "Board Game Night",
		Date:      time.Now().UTC().Add(24 * time.Hour),
		Capacity:  capacity,
		CreatorID: uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), event))
	return event
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	event := seedEvent(t, store, 3)

	updated, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
		return tx.AddAttendee("user-1")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentAttendees)
	require.Len(t, updated.Attendees, 1)
	assert.Equal(t, "user-1", updated.Attendees[0].UserID)
}

func TestAtomicallyRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	event := seedEvent(t, store, 3)

	boom := errors.New("boom")
	_, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
		if err := tx.AddAttendee("user-1"); err != nil {
			return err
		}
		if err := tx.SetCapacity(99); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentAttendees, "failed transaction leaves no partial writes")
	assert.Empty(t, got.Attendees)
	assert.Equal(t, 3, got.Capacity)
}

func TestAtomicallyNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Atomically(context.Background(), uuid.New().String(), func(tx EventTx) error {
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTruncateKeepsEarliestPositions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	event := seedEvent(t, store, 5)

	for _, u := range []string{"u1", "u2", "u3", "u4", "u5"} {
		_, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
			return tx.AddAttendee(u)
		})
		require.NoError(t, err)
	}

	// A leave followed by a rejoin moves the user to the back of the order.
	_, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
		return tx.RemoveAttendee("u2")
	})
	require.NoError(t, err)
	_, err = store.Atomically(ctx, event.ID, func(tx EventTx) error {
		return tx.AddAttendee("u2")
	})
	require.NoError(t, err)

	updated, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
		if err := tx.TruncateAttendees(3); err != nil {
			return err
		}
		return tx.SetCapacity(3)
	})
	require.NoError(t, err)

	require.Len(t, updated.Attendees, 3)
	assert.Equal(t, "u1", updated.Attendees[0].UserID)
	assert.Equal(t, "u3", updated.Attendees[1].UserID)
	assert.Equal(t, "u4", updated.Attendees[2].UserID)
	assert.Equal(t, 3, updated.CurrentAttendees)
}

func TestDeleteReleasesReservations(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	event := seedEvent(t, store, 3)

	_, err := store.Atomically(ctx, event.ID, func(tx EventTx) error {
		return tx.AddAttendee("user-1")
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, event.ID))
	require.ErrorIs(t, store.Delete(ctx, event.ID), ErrNotFound)

	attending, err := store.ListAttending(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, attending)
}

func TestTitleExistsIsCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedEvent(t, store, 3)

	exists, err := store.TitleExists(ctx, "board game NIGHT")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.TitleExists(ctx, "Quiz Night")
	require.NoError(t, err)
	assert.False(t, exists)
}
