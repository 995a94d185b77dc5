package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. Statements are idempotent so restarts are
// safe. The attendances.position sequence fixes the stable join order that
// capacity reconciliation truncates by.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id                UUID PRIMARY KEY,
    title             TEXT NOT NULL,
    description       TEXT NOT NULL,
    event_date        TIMESTAMPTZ NOT NULL,
    location          TEXT NOT NULL,
    image_url         TEXT NOT NULL DEFAULT '',
    capacity          INT  NOT NULL CHECK (capacity >= 1),
    current_attendees INT  NOT NULL DEFAULT 0 CHECK (current_attendees >= 0),
    creator_id        UUID NOT NULL REFERENCES users (id),
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS attendances (
    event_id  UUID NOT NULL REFERENCES events (id) ON DELETE CASCADE,
    user_id   UUID NOT NULL REFERENCES users (id),
    position  BIGINT NOT NULL GENERATED ALWAYS AS IDENTITY,
    joined_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events (event_date);
CREATE INDEX IF NOT EXISTS idx_events_creator ON events (creator_id);
CREATE INDEX IF NOT EXISTS idx_attendances_user ON attendances (user_id);
`

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
