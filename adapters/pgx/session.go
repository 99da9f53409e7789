package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/telegive/authd/core"
)

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	query := `INSERT INTO auth_sessions (token, account_id, created_at, expires_at, is_active)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	err := a.pool.QueryRow(ctx, query,
		s.Token, s.AccountID, s.CreatedAt, s.ExpiresAt, s.IsActive,
	).Scan(&s.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrSessionTokenTaken
		}
		return err
	}
	return nil
}

func (a *Adapter) GetSessionByToken(ctx context.Context, token string) (*core.Session, error) {
	query := `SELECT id, token, account_id, created_at, expires_at, is_active
	          FROM auth_sessions WHERE token = $1`

	s := &core.Session{}
	err := a.pool.QueryRow(ctx, query, token).Scan(
		&s.ID, &s.Token, &s.AccountID, &s.CreatedAt, &s.ExpiresAt, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (a *Adapter) UpdateSession(ctx context.Context, s *core.Session) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE auth_sessions SET expires_at = $1, is_active = $2 WHERE id = $3`,
		s.ExpiresAt, s.IsActive, s.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) InvalidateAccountSessions(ctx context.Context, accountID int64) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE auth_sessions SET is_active = FALSE WHERE account_id = $1`, accountID)
	return err
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := a.pool.Exec(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
