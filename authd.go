// Package authd is a credential and session broker for Telegram bot
// accounts: it registers bot identities against the Bot API, stores an
// encrypted copy of each bot token, and issues opaque session tokens
// for subsequent authenticated calls.
package authd

import (
	"time"

	"go.uber.org/zap"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/pkg/crypto"
	"github.com/telegive/authd/services"
)

// interfaces
type (
	AuthStorage  = core.AuthStorage
	Cache        = core.Cache
	AuthProvider = core.AuthProvider
)

// entities and views
type (
	Account       = core.Account
	Session       = core.Session
	PublicAccount = core.PublicAccount
)

// errors
var (
	ErrMissingToken       = core.ErrMissingToken
	ErrInvalidTokenFormat = core.ErrInvalidTokenFormat
	ErrAccountExists      = core.ErrAccountExists
	ErrAccountNotFound    = core.ErrAccountNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrAccountDeactivated = core.ErrAccountDeactivated
	ErrInvalidSession     = core.ErrInvalidSession
	ErrAccountInactive    = core.ErrAccountInactive
)

type Config struct {
	// MasterSecret feeds the credential cipher's key derivation.
	// Required; the derived key lives for the process lifetime.
	MasterSecret string

	// Storage is the durable account/session backend. Required.
	Storage core.AuthStorage

	// Authority verifies bot tokens against Telegram. Required.
	Authority services.Authority

	// Optional collaborators.
	Cache      core.Cache
	Notifier   services.TokenNotifier
	SessionTTL time.Duration // defaults to 24h
	Logger     *zap.Logger   // defaults to a no-op logger
}

// Service bundles the wired orchestrator and session engine.
type Service struct {
	core.AuthProvider

	Sessions *services.SessionManager
}

// New wires the cipher, session engine and orchestrator from the given
// configuration. Key derivation runs once, here.
func New(cfg Config) (*Service, error) {
	if cfg.MasterSecret == "" {
		return nil, core.ErrMasterSecretRequired
	}
	if cfg.Storage == nil {
		return nil, core.ErrStorageRequired
	}
	if cfg.Authority == nil {
		return nil, core.ErrAuthorityRequired
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cipher, err := crypto.NewCipher(cfg.MasterSecret)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionManager(cfg.SessionTTL, cfg.Storage, cfg.Cache, log.Named("sessions"))
	auth := services.NewAuthService(cfg.Storage, cipher, cfg.Authority, sessions, cfg.Notifier, log.Named("auth"))

	return &Service{
		AuthProvider: auth,
		Sessions:     sessions,
	}, nil
}
