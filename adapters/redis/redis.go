// Package redis provides a core.Cache session cache backed by Redis,
// for deployments running more than one instance of the service.
package redis

import (
	"context"
	"encoding/json"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/telegive/authd/core"
)

const keyPrefix = "authd:session:"

type Cache struct {
	c   *rdb.Client
	ttl time.Duration
}

var _ core.Cache = (*Cache)(nil)

func New(addr string, db int, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		c:   rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		ttl: ttl,
	}
}

func (r *Cache) Get(token string) (*core.Session, bool) {
	b, err := r.c.Get(context.Background(), keyPrefix+token).Bytes()
	if err != nil {
		return nil, false
	}
	var s cachedSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	return s.toSession(), true
}

func (r *Cache) Set(token string, s *core.Session) {
	b, err := json.Marshal(fromSession(s))
	if err != nil {
		return
	}
	_ = r.c.Set(context.Background(), keyPrefix+token, b, r.ttl).Err()
}

func (r *Cache) Delete(token string) {
	_ = r.c.Del(context.Background(), keyPrefix+token).Err()
}

// cachedSession carries the token explicitly; core.Session excludes it
// from JSON so it never leaks through API responses.
type cachedSession struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

func fromSession(s *core.Session) cachedSession {
	return cachedSession{
		ID:        s.ID,
		Token:     s.Token,
		AccountID: s.AccountID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		IsActive:  s.IsActive,
	}
}

func (c cachedSession) toSession() *core.Session {
	return &core.Session{
		ID:        c.ID,
		Token:     c.Token,
		AccountID: c.AccountID,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
		IsActive:  c.IsActive,
	}
}
