package core

import "context"

// Storage ports. Adapters implement these against a durable backend;
// the unique constraints on bot_id, token ciphertext and session token
// live in the backend and are the sole arbiter for racing writes.

type AccountStorage interface {
	// CreateAccount persists a new account and fills in ID and
	// CreatedAt. A duplicate bot ID or ciphertext must surface as
	// ErrAccountExists, even when a prior existence check passed.
	CreateAccount(ctx context.Context, a *Account) error

	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	GetAccountByBotID(ctx context.Context, botID int64) (*Account, error)

	// UpdateAccountToken overwrites the stored ciphertext in place.
	// Used by recovery flows after re-encryption.
	UpdateAccountToken(ctx context.Context, id int64, ciphertext string) error

	// TouchLogin and TouchBotCheck each perform a single durable
	// timestamp write.
	TouchLogin(ctx context.Context, id int64) error
	TouchBotCheck(ctx context.Context, id int64) error

	// SetAccountActive must be visible to all subsequent reads
	// immediately.
	SetAccountActive(ctx context.Context, id int64, active bool) error

	// ListAccounts returns one page of accounts plus the total count.
	ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error)
}

type SessionStorage interface {
	// CreateSession persists a new session and fills in ID. A token
	// collision must surface as ErrSessionTokenTaken so the engine can
	// regenerate.
	CreateSession(ctx context.Context, s *Session) error

	GetSessionByToken(ctx context.Context, token string) (*Session, error)

	// UpdateSession writes the mutable fields (IsActive, ExpiresAt).
	UpdateSession(ctx context.Context, s *Session) error

	// InvalidateAccountSessions flips IsActive off for every session
	// of the account.
	InvalidateAccountSessions(ctx context.Context, accountID int64) error

	// DeleteExpiredSessions removes rows whose expiry has passed,
	// regardless of IsActive, and returns the number removed.
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

type AuthStorage interface {
	AccountStorage
	SessionStorage
}
