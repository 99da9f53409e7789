// Package pgx implements the storage ports on PostgreSQL via pgxpool.
package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telegive/authd/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{pool: pool}
}

// Ping reports storage reachability for health checks.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                   BIGSERIAL PRIMARY KEY,
	bot_id               BIGINT       NOT NULL UNIQUE,
	bot_token_encrypted  VARCHAR(500) NOT NULL UNIQUE,
	bot_username         VARCHAR(100) NOT NULL,
	bot_name             VARCHAR(255) NOT NULL,
	channel_id           BIGINT       NOT NULL DEFAULT 0,
	channel_username     VARCHAR(100) NOT NULL DEFAULT '',
	channel_title        VARCHAR(255) NOT NULL DEFAULT 'Setup Required',
	channel_member_count INTEGER      NOT NULL DEFAULT 0,
	can_post_messages    BOOLEAN      NOT NULL DEFAULT FALSE,
	can_edit_messages    BOOLEAN      NOT NULL DEFAULT FALSE,
	can_send_media       BOOLEAN      NOT NULL DEFAULT FALSE,
	is_active            BOOLEAN      NOT NULL DEFAULT TRUE,
	bot_verified         BOOLEAN      NOT NULL DEFAULT TRUE,
	channel_verified     BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ  NOT NULL DEFAULT now(),
	last_login_at        TIMESTAMPTZ,
	last_bot_check_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS auth_sessions (
	id         BIGSERIAL PRIMARY KEY,
	token      VARCHAR(255) NOT NULL UNIQUE,
	account_id BIGINT       NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ  NOT NULL,
	is_active  BOOLEAN      NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_auth_sessions_account_id ON auth_sessions (account_id);
CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires_at ON auth_sessions (expires_at);
`

// Migrate creates the two tables and their constraints if absent.
func (a *Adapter) Migrate(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, schema)
	return err
}

// isUniqueViolation detects PostgreSQL error 23505. The unique
// constraints are the source of truth for racing creates; callers
// convert this into the domain conflict error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
