package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/pkg/crypto"
)

const (
	// DefaultSessionTTL is applied when no TTL is configured.
	DefaultSessionTTL = 24 * time.Hour

	// Token regeneration attempts on a storage-level uniqueness
	// collision. The token space is 62^32, so one retry is already
	// overkill.
	maxTokenAttempts = 3
)

// SessionManager creates, validates, extends and invalidates opaque
// session tokens bound to an account.
type SessionManager struct {
	ttl     time.Duration
	storage core.SessionStorage
	cache   core.Cache // optional, nil disables caching
	log     *zap.Logger
}

func NewSessionManager(ttl time.Duration, storage core.SessionStorage, cache core.Cache, log *zap.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{ttl: ttl, storage: storage, cache: cache, log: log}
}

// TTL returns the configured default session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Create opens a session for the account with the default TTL.
func (sm *SessionManager) Create(ctx context.Context, accountID int64) (*core.Session, error) {
	return sm.CreateWithTTL(ctx, accountID, sm.ttl)
}

// CreateWithTTL opens a session expiring after the given lifetime.
// Token generation retries on the vanishingly rare storage-level
// uniqueness collision.
func (sm *SessionManager) CreateWithTTL(ctx context.Context, accountID int64, ttl time.Duration) (*core.Session, error) {
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := crypto.GenerateSessionToken()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}

		now := time.Now().UTC()
		session := &core.Session{
			Token:     token,
			AccountID: accountID,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
			IsActive:  true,
		}

		err = sm.storage.CreateSession(ctx, session)
		if err == nil {
			if sm.cache != nil {
				sm.cache.Set(token, session)
			}
			return session, nil
		}
		if err != core.ErrSessionTokenTaken {
			return nil, fmt.Errorf("create session: %w", err)
		}
		lastErr = err
		sm.log.Warn("session token collision, regenerating", zap.Int64("account_id", accountID))
	}
	return nil, fmt.Errorf("create session: %w", lastErr)
}

// GetValid resolves a token to its session only if the session is
// active and unexpired. Nonexistent, expired and invalidated tokens are
// indistinguishable: all return (nil, nil), so callers cannot probe for
// token existence. A session found expired is flipped inactive in place.
func (sm *SessionManager) GetValid(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, nil
	}

	now := time.Now().UTC()

	if sm.cache != nil {
		if session, ok := sm.cache.Get(token); ok {
			if session.Usable(now) {
				return session, nil
			}
			sm.cache.Delete(token)
			// Stale entry: fall through to storage so an expired
			// session gets its flag flipped durably.
		}
	}

	session, err := sm.storage.GetSessionByToken(ctx, token)
	if err != nil {
		if err == core.ErrSessionNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.IsActive {
		return nil, nil
	}
	if session.Expired(now) {
		session.IsActive = false
		if err := sm.storage.UpdateSession(ctx, session); err != nil {
			sm.log.Warn("failed to mark expired session inactive",
				zap.Int64("session_id", session.ID), zap.Error(err))
		}
		return nil, nil
	}

	if sm.cache != nil {
		sm.cache.Set(token, session)
	}
	return session, nil
}

// Invalidate flips the session inactive. Idempotent: invalidating an
// already-dead session is not an error.
func (sm *SessionManager) Invalidate(ctx context.Context, session *core.Session) error {
	if sm.cache != nil {
		sm.cache.Delete(session.Token)
	}
	if !session.IsActive {
		return nil
	}
	session.IsActive = false
	if err := sm.storage.UpdateSession(ctx, session); err != nil {
		session.IsActive = true
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// Extend pushes the session expiry to now + hours. Only meaningful on
// a still-active session; callers guard that.
func (sm *SessionManager) Extend(ctx context.Context, session *core.Session, hours int) error {
	session.ExpiresAt = time.Now().UTC().Add(time.Duration(hours) * time.Hour)
	if err := sm.storage.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if sm.cache != nil {
		sm.cache.Set(session.Token, session)
	}
	return nil
}

// InvalidateAccountSessions kills every session of the account. The
// cache learns about it lazily: entries fail the re-check on next use
// once their expiry passes, and verify-side invalidation deletes the
// entry it touched.
func (sm *SessionManager) InvalidateAccountSessions(ctx context.Context, accountID int64) error {
	return sm.storage.InvalidateAccountSessions(ctx, accountID)
}

// CleanupExpired bulk-removes sessions whose expiry has passed,
// regardless of active flag, and returns the count removed. Scheduling
// is the caller's concern.
func (sm *SessionManager) CleanupExpired(ctx context.Context) (int, error) {
	count, err := sm.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	if count > 0 {
		sm.log.Info("expired sessions removed", zap.Int("count", count))
	}
	return count, nil
}
