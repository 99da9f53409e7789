package core

import "errors"

// Credential and account errors
var (
	ErrMissingToken       = errors.New("bot token is required")                // 400
	ErrInvalidTokenFormat = errors.New("invalid bot token format")             // 400
	ErrAccountExists      = errors.New("account with this bot already exists") // 409
	ErrAccountNotFound    = errors.New("account not found")                    // 404
	ErrInvalidCredentials = errors.New("invalid bot token")                    // 401
	ErrAccountDeactivated = errors.New("account is deactivated")               // 403
	ErrTokenUnavailable   = errors.New("bot token unavailable")                // 404
)

// Session errors
var (
	ErrInvalidSessionFormat = errors.New("invalid session token format")  // 400
	ErrInvalidSession       = errors.New("invalid or expired session")    // 401
	ErrAccountInactive      = errors.New("account not found or inactive") // 403
	ErrSessionNotFound      = errors.New("session not found")             // internal, never surfaced
	ErrSessionTokenTaken    = errors.New("session token already exists")  // internal, triggers regeneration
)

// Config errors (server-side wiring)
var (
	ErrStorageRequired      = errors.New("storage adapter is required")
	ErrAuthorityRequired    = errors.New("authority client is required")
	ErrMasterSecretRequired = errors.New("master encryption secret is required")
)

// Machine-readable codes matching what dependent services key on.
const (
	CodeMissingToken         = "MISSING_TOKEN"
	CodeInvalidTokenFormat   = "INVALID_TOKEN_FORMAT"
	CodeAccountExists        = "ACCOUNT_EXISTS"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeAccountDeactivated   = "ACCOUNT_DEACTIVATED"
	CodeTokenUnavailable     = "TOKEN_UNAVAILABLE"
	CodeInvalidSessionFormat = "INVALID_SESSION_ID_FORMAT"
	CodeInvalidSession       = "INVALID_SESSION"
	CodeAccountInactive      = "ACCOUNT_INACTIVE"
	CodeInternal             = "INTERNAL_ERROR"
)

// Code maps a domain error to its machine-readable code. Unrecognized
// errors collapse to CodeInternal so no storage or cipher detail leaks
// past the process boundary.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return CodeMissingToken
	case errors.Is(err, ErrInvalidTokenFormat):
		return CodeInvalidTokenFormat
	case errors.Is(err, ErrAccountExists):
		return CodeAccountExists
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrAccountDeactivated):
		return CodeAccountDeactivated
	case errors.Is(err, ErrTokenUnavailable):
		return CodeTokenUnavailable
	case errors.Is(err, ErrInvalidSessionFormat):
		return CodeInvalidSessionFormat
	case errors.Is(err, ErrInvalidSession):
		return CodeInvalidSession
	case errors.Is(err, ErrAccountInactive):
		return CodeAccountInactive
	default:
		return CodeInternal
	}
}
