package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, event_date, location, image_url,
	capacity, current_attendees, creator_id, created_at`

// EventRepository is the PostgreSQL implementation of EventStore.
// It uses pgx directly (no ORM) for transparency and performance.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, event_date, location, image_url,
		                     capacity, current_attendees, creator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.ImageURL,
		e.Capacity, e.CurrentAttendees, e.CreatorID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", translatePgError(err))
	}
	return nil
}

// GetByID returns a single event with its attendee list, or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	e.Attendees, err = r.attendees(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns events matching the filter, soonest first.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var conds []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}
	if !f.Date.IsZero() {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		args = append(args, day)
		conds = append(conds, fmt.Sprintf("event_date >= $%d", len(args)))
		args = append(args, day.Add(24*time.Hour))
		conds = append(conds, fmt.Sprintf("event_date < $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY event_date ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

// ListByCreator returns the events a user created, soonest first.
func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE creator_id = $1 ORDER BY event_date ASC`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	return collectEvents(rows)
}

// ListAttending returns the events a user holds a seat on, soonest first.
func (r *EventRepository) ListAttending(ctx context.Context, userID string) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, e.description, e.event_date, e.location, e.image_url,
		        e.capacity, e.current_attendees, e.creator_id, e.created_at
		 FROM events e
		 JOIN attendances a ON a.event_id = e.id
		 WHERE a.user_id = $1
		 ORDER BY e.event_date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attending events: %w", err)
	}
	return collectEvents(rows)
}

// TitleExists reports whether an event with the given title already exists
// (case-insensitive).
func (r *EventRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE lower(title) = lower($1))`,
		title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event title: %w", err)
	}
	return exists, nil
}

// Delete removes an event. Attendance rows go with it (ON DELETE CASCADE),
// which releases every reservation in the same statement.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Atomically runs fn inside a transaction that holds a row-level exclusive
// lock on the event.
//
// A naive read-then-write sequence is broken under concurrency: two callers
// can read the same counter value before either writes back, and a 10-seat
// event ends up with 11 registrations. SELECT … FOR UPDATE serialises all
// mutations of one event row: any concurrent transaction attempting the same
// lock blocks until this one commits or rolls back, so the predicates fn
// validated cannot go stale before its writes land. Rows of other events are
// untouched, so unrelated events proceed in parallel.
func (r *EventRepository) Atomically(ctx context.Context, eventID string, fn func(tx EventTx) error) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", translatePgError(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var snapshot *model.Event
	snapshot, err = scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		err = fmt.Errorf("lock event row: %w", translatePgError(err))
		return nil, err
	}
	snapshot.Attendees, err = r.attendees(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err = fn(&pgEventTx{ctx: ctx, tx: tx, event: snapshot}); err != nil {
		return nil, err
	}

	// Re-read inside the same transaction so the returned view reflects
	// exactly the state being committed.
	var updated *model.Event
	updated, err = scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
	if err != nil {
		err = fmt.Errorf("reread event: %w", translatePgError(err))
		return nil, err
	}
	updated.Attendees, err = r.attendees(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit transaction: %w", translatePgError(err))
		return nil, err
	}
	return updated, nil
}

func (r *EventRepository) attendees(ctx context.Context, q querier, eventID string) ([]model.Attendee, error) {
	rows, err := q.Query(ctx,
		`SELECT user_id, position, joined_at
		 FROM attendances
		 WHERE event_id = $1
		 ORDER BY position ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", translatePgError(err))
	}
	defer rows.Close()

	var atts []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.UserID, &a.Position, &a.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

// pgEventTx applies event mutations inside the locked transaction.
type pgEventTx struct {
	ctx   context.Context
	tx    pgx.Tx
	event *model.Event
}

func (t *pgEventTx) Event() *model.Event { return t.event }

func (t *pgEventTx) AddAttendee(userID string) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO attendances (event_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		t.event.ID, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", translatePgError(err))
	}
	_, err = t.tx.Exec(t.ctx,
		`UPDATE events SET current_attendees = current_attendees + 1 WHERE id = $1`,
		t.event.ID,
	)
	if err != nil {
		return fmt.Errorf("increment attendee count: %w", translatePgError(err))
	}
	return nil
}

func (t *pgEventTx) RemoveAttendee(userID string) error {
	_, err := t.tx.Exec(t.ctx,
		`DELETE FROM attendances WHERE event_id = $1 AND user_id = $2`,
		t.event.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", translatePgError(err))
	}
	_, err = t.tx.Exec(t.ctx,
		`UPDATE events SET current_attendees = current_attendees - 1 WHERE id = $1`,
		t.event.ID,
	)
	if err != nil {
		return fmt.Errorf("decrement attendee count: %w", translatePgError(err))
	}
	return nil
}

func (t *pgEventTx) SetCapacity(capacity int) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE events SET capacity = $2 WHERE id = $1`,
		t.event.ID, capacity,
	)
	if err != nil {
		return fmt.Errorf("update capacity: %w", translatePgError(err))
	}
	return nil
}

func (t *pgEventTx) TruncateAttendees(keep int) error {
	// Retain the keep earliest-joined attendees; position is assigned from a
	// sequence at join time so this order is stable and reproducible.
	_, err := t.tx.Exec(t.ctx,
		`DELETE FROM attendances
		 WHERE event_id = $1
		   AND position NOT IN (
		       SELECT position FROM attendances
		       WHERE event_id = $1
		       ORDER BY position ASC
		       LIMIT $2)`,
		t.event.ID, keep,
	)
	if err != nil {
		return fmt.Errorf("truncate attendances: %w", translatePgError(err))
	}
	_, err = t.tx.Exec(t.ctx,
		`UPDATE events SET current_attendees = $2 WHERE id = $1`,
		t.event.ID, keep,
	)
	if err != nil {
		return fmt.Errorf("reset attendee count: %w", translatePgError(err))
	}
	return nil
}

func (t *pgEventTx) SetDetails(d EventDetails) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE events
		 SET title = $2, description = $3, event_date = $4, location = $5, image_url = $6
		 WHERE id = $1`,
		t.event.ID, d.Title, d.Description, d.Date, d.Location, d.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("update event details: %w", translatePgError(err))
	}
	return nil
}

// UserRepository is the PostgreSQL implementation of UserStore.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Returns ErrDuplicate if the email is taken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", translatePgError(err))
	}
	return nil
}

// GetByID returns a user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// GetByEmail returns a user or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// querier is the subset of pgx query methods shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.ImageURL,
		&e.Capacity, &e.CurrentAttendees, &e.CreatorID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.ImageURL,
			&e.Capacity, &e.CurrentAttendees, &e.CreatorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// translatePgError maps PostgreSQL error codes onto the package's sentinel
// errors. Serialization failures and deadlocks are retryable contention;
// unique violations are duplicates.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrTxConflict, pgErr.Code)
		case "23505":
			return ErrDuplicate
		}
	}
	return err
}
