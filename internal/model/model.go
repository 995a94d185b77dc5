// Package model defines the core domain types for the event RSVP service.
package model

import "time"

// Event represents a bookable event created by an organizer.
// CurrentAttendees is derived state: it always equals len(Attendees) and is
// only ever written in the same store transaction as the attendee set itself.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	ImageURL         string    `json:"image_url,omitempty"`
	Capacity         int       `json:"capacity"`
	CurrentAttendees int       `json:"current_attendees"`
	CreatorID        string    `json:"creator_id"`
	// Attendees is ordered by join time, earliest first. Capacity
	// reconciliation truncates from the tail of this order.
	Attendees []Attendee `json:"attendees,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.Capacity - e.CurrentAttendees
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.Capacity
}

// HasAttendee reports whether the given user currently holds a seat.
func (e *Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// Attendee is one reserved seat on an event.
// Position is a monotonically increasing per-event sequence assigned at join
// time; it is the stable insertion order reconciliation relies on.
type Attendee struct {
	UserID   string    `json:"user_id"`
	Position int64     `json:"-"`
	JoinedAt time.Time `json:"joined_at"`
}

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventFilter narrows List queries.
type EventFilter struct {
	// Search matches title, description, or location case-insensitively.
	Search string
	// Date, when non-zero, restricts results to that calendar day (UTC).
	Date time.Time
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url"`
	Capacity    int       `json:"capacity"`
}

// UpdateEventRequest is the payload for updating an event. Nil fields are
// left untouched. A Capacity below current occupancy triggers membership
// reconciliation.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	ImageURL    *string    `json:"image_url"`
	Capacity    *int       `json:"capacity"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
