package core

// Cache is an optional read-through cache for session lookups, keyed
// by the opaque session token. Implementations may drop entries at any
// time; the session engine re-checks usability on every hit, so a stale
// expiry never extends a session's life. Entries must be removed on
// invalidation.
type Cache interface {
	Get(token string) (*Session, bool)
	Set(token string, s *Session)
	Delete(token string)
}
