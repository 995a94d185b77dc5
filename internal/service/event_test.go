package service

import (
	"context"
	"testing"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:       "Go Meetup",
		Description: "Monthly Go meetup",
		Date:        time.Now().UTC().Add(72 * time.Hour),
		Location:    "Community Hall",
		Capacity:    25,
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewEventService(newTestStore(t))
	ctx := context.Background()
	creator := uuid.New().String()

	tests := []struct {
		name    string
		mutate  func(*model.CreateEventRequest)
		wantErr error
	}{
		{"missing title", func(r *model.CreateEventRequest) { r.Title = "  " }, ErrTitleRequired},
		{"missing date", func(r *model.CreateEventRequest) { r.Date = time.Time{} }, ErrDateRequired},
		{"zero capacity", func(r *model.CreateEventRequest) { r.Capacity = 0 }, ErrInvalidCapacity},
		{"negative capacity", func(r *model.CreateEventRequest) { r.Capacity = -3 }, ErrInvalidCapacity},
		{"huge capacity", func(r *model.CreateEventRequest) { r.Capacity = 1_000_000 }, ErrCapacityTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.Create(ctx, creator, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateEventDuplicateTitle(t *testing.T) {
	svc := NewEventService(newTestStore(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New().String(), validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Title = "go meetup" // case-insensitive match
	_, err = svc.Create(ctx, uuid.New().String(), req)
	require.ErrorIs(t, err, ErrTitleTaken)
}

func TestGetEvent(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New().String(), validCreateRequest())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, 0, got.CurrentAttendees)

	_, err = svc.Get(ctx, uuid.New().String())
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestListEventsFilters(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store)
	ctx := context.Background()
	creator := uuid.New().String()

	day1 := time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	mk := func(title, location string, date time.Time) {
		req := validCreateRequest()
		req.Title = title
		req.Location = location
		req.Date = date
		_, err := svc.Create(ctx, creator, req)
		require.NoError(t, err)
	}
	mk("Jazz Night", "Blue Note", day1)
	mk("Tech Conference", "Convention Center", day2)
	mk("Morning Run", "Riverside Park", day2)

	all, err := svc.List(ctx, model.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Jazz Night", all[0].Title, "sorted by event date ascending")

	byText, err := svc.List(ctx, model.EventFilter{Search: "conference"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "Tech Conference", byText[0].Title)

	byLocation, err := svc.List(ctx, model.EventFilter{Search: "riverside"})
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Morning Run", byLocation[0].Title)

	byDate, err := svc.List(ctx, model.EventFilter{Date: day2.Truncate(24 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)
}

func TestUpdateEventDetailsAndCapacity(t *testing.T) {
	store := newTestStore(t)
	events := NewEventService(store)
	rsvps := NewReservationService(store)
	ctx := context.Background()
	creator := uuid.New().String()

	created, err := events.Create(ctx, creator, validCreateRequest())
	require.NoError(t, err)

	users := make([]string, 4)
	for i := range users {
		users[i] = uuid.New().String()
		_, err := rsvps.Join(ctx, created.ID, users[i])
		require.NoError(t, err)
	}

	title := "Go Meetup — October"
	capacity := 2
	updated, err := events.Update(ctx, created.ID, creator, model.UpdateEventRequest{
		Title:    &title,
		Capacity: &capacity,
	})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 2, updated.Capacity)
	assert.Equal(t, 2, updated.CurrentAttendees, "reduction reconciles membership")
	require.Len(t, updated.Attendees, 2)
	assert.Equal(t, users[0], updated.Attendees[0].UserID)
	assert.Equal(t, users[1], updated.Attendees[1].UserID)

	requireConsistent(t, store, created.ID)
}

func TestUpdateEventRejectsNonCreator(t *testing.T) {
	store := newTestStore(t)
	svc := NewEventService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New().String(), validCreateRequest())
	require.NoError(t, err)

	capacity := 1
	_, err = svc.Update(ctx, created.ID, uuid.New().String(), model.UpdateEventRequest{Capacity: &capacity})
	require.ErrorIs(t, err, ErrNotCreator)
}

func TestDeleteEvent(t *testing.T) {
	store := newTestStore(t)
	events := NewEventService(store)
	rsvps := NewReservationService(store)
	ctx := context.Background()
	creator := uuid.New().String()

	created, err := events.Create(ctx, creator, validCreateRequest())
	require.NoError(t, err)
	user := uuid.New().String()
	_, err = rsvps.Join(ctx, created.ID, user)
	require.NoError(t, err)

	require.ErrorIs(t, events.Delete(ctx, created.ID, uuid.New().String()), ErrNotCreator)
	require.NoError(t, events.Delete(ctx, created.ID, creator))

	_, err = events.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrEventNotFound)

	attending, err := events.ListAttending(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, attending, "deletion releases all reservations")
}

func TestMyEventsAndAttending(t *testing.T) {
	store := newTestStore(t)
	events := NewEventService(store)
	rsvps := NewReservationService(store)
	ctx := context.Background()

	creator := uuid.New().String()
	attendee := uuid.New().String()

	created, err := events.Create(ctx, creator, validCreateRequest())
	require.NoError(t, err)
	_, err = rsvps.Join(ctx, created.ID, attendee)
	require.NoError(t, err)

	mine, err := events.ListByCreator(ctx, creator)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	attending, err := events.ListAttending(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, attending, 1)
	assert.Equal(t, created.ID, attending[0].ID)

	none, err := events.ListAttending(ctx, creator)
	require.NoError(t, err)
	assert.Empty(t, none)
}
