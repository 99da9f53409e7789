package core

import "context"

// AuthProvider is the surface the HTTP adapter (and any other thin
// transport layer) calls into. Implementations return domain errors
// from errors.go; mapping them to transport status codes is the
// adapter's job.
type AuthProvider interface {
	// Register validates a bot token against Telegram and creates the
	// account. Registration is create-or-reject: a second registration
	// of the same bot fails with ErrAccountExists.
	Register(ctx context.Context, botToken string) (*RegisterResult, error)

	// Login authenticates a bot token against the locally stored
	// ciphertext (no network round trip) and opens a session.
	Login(ctx context.Context, botToken string) (*LoginResult, error)

	// VerifySession resolves an opaque session token to its account.
	VerifySession(ctx context.Context, token string) (*VerifyResult, error)

	// Logout invalidates the session if one exists. Idempotent; never
	// fails for a missing or already-dead session.
	Logout(ctx context.Context, token string) error

	// DecryptToken returns the plaintext bot token for trusted
	// service-to-service callers. More sensitive than VerifySession:
	// the routing layer must gate it behind the service token.
	DecryptToken(ctx context.Context, accountID int64) (string, error)
	DecryptTokenByBotID(ctx context.Context, botID int64) (string, error)

	// Service-integration reads.
	GetAccount(ctx context.Context, accountID int64) (*PublicAccount, error)
	GetAccountByBotID(ctx context.Context, botID int64) (*PublicAccount, error)
	ValidateAccount(ctx context.Context, accountID int64) (*AccountValidation, error)
	ListAccounts(ctx context.Context, page, perPage int) (*AccountPage, error)

	// DeactivateAccount flips the account inactive and kills its
	// sessions. Exposed to trusted service callers only.
	DeactivateAccount(ctx context.Context, accountID int64) error
}
