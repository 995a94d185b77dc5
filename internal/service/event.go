// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/gatherpoint/gatherpoint/internal/repository"
	"github.com/google/uuid"
)

// EventService orchestrates event CRUD operations. Capacity changes go
// through the same reconciliation logic as ReservationService.UpdateCapacity
// so membership invariants hold on every path.
type EventService struct {
	events repository.EventStore
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventStore) *EventService {
	return &EventService{events: events}
}

// Create validates the request and inserts a new event owned by creatorID.
func (s *EventService) Create(ctx context.Context, creatorID string, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}
	if err := validateCapacity(req.Capacity); err != nil {
		return nil, err
	}

	taken, err := s.events.TitleExists(ctx, req.Title)
	if err != nil {
		return nil, fmt.Errorf("check event title: %w", err)
	}
	if taken {
		return nil, ErrTitleTaken
	}

	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Capacity:    req.Capacity,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Get returns a single event with its membership view.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, ErrEventNotFound
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// List returns events matching the filter.
func (s *EventService) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	return s.events.List(ctx, f)
}

// ListByCreator returns the caller's own events.
func (s *EventService) ListByCreator(ctx context.Context, creatorID string) ([]model.Event, error) {
	return s.events.ListByCreator(ctx, creatorID)
}

// ListAttending returns the events the caller holds a seat on.
func (s *EventService) ListAttending(ctx context.Context, userID string) ([]model.Event, error) {
	return s.events.ListAttending(ctx, userID)
}

// Update applies creator-only changes to an event. Descriptive fields are
// plain writes; a capacity change runs through capacity reconciliation in
// the same transaction, so a reduction below occupancy and its membership
// truncation commit as one unit.
func (s *EventService) Update(ctx context.Context, eventID, callerID string, req model.UpdateEventRequest) (*model.Event, error) {
	if req.Capacity != nil {
		if err := validateCapacity(*req.Capacity); err != nil {
			return nil, err
		}
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !validID(eventID) {
		return nil, ErrEventNotFound
	}

	return atomically(ctx, s.events, eventID, func(tx repository.EventTx) error {
		ev := tx.Event()
		if ev.CreatorID != callerID {
			return ErrNotCreator
		}

		d := repository.EventDetails{
			Title:       ev.Title,
			Description: ev.Description,
			Date:        ev.Date,
			Location:    ev.Location,
			ImageURL:    ev.ImageURL,
		}
		if req.Title != nil {
			d.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.Date != nil {
			d.Date = *req.Date
		}
		if req.Location != nil {
			d.Location = *req.Location
		}
		if req.ImageURL != nil {
			d.ImageURL = *req.ImageURL
		}
		if err := tx.SetDetails(d); err != nil {
			return err
		}

		if req.Capacity != nil {
			return reconcileCapacity(tx, ev, *req.Capacity)
		}
		return nil
	})
}

// Delete removes an event and, with it, every reservation. Creator-only.
func (s *EventService) Delete(ctx context.Context, eventID, callerID string) error {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != callerID {
		return ErrNotCreator
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
