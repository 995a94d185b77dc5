package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here so that handlers
// can translate them into stable, distinct outcome codes.

// ===== Reservation Errors =====
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventFull         = errors.New("event is at full capacity")
	ErrAlreadyRegistered = errors.New("already RSVP'd to this event")
	ErrNotRegistered     = errors.New("not RSVP'd to this event")
	// ErrContention is surfaced after bounded retries of a store-level
	// transaction conflict. Unlike the business conflicts above, the same
	// request may succeed if simply retried by the caller.
	ErrContention = errors.New("event is busy, try again")
)

// ===== Event Errors =====
var (
	ErrNotCreator      = errors.New("not authorized to modify this event")
	ErrTitleTaken      = errors.New("an event with this title already exists")
	ErrTitleRequired   = errors.New("event title is required")
	ErrDateRequired    = errors.New("event date is required")
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	ErrCapacityTooBig  = errors.New("capacity cannot exceed 100,000")
)

// ===== Auth Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)
