// Package cache provides the in-process session cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/telegive/authd/core"
)

// Memory is a core.Cache backed by an expiring in-process map. Entries
// age out on their own; the session engine still re-checks usability on
// every hit.
type Memory struct {
	c *gocache.Cache
}

var _ core.Cache = (*Memory)(nil)

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Memory{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Memory) Get(token string) (*core.Session, bool) {
	v, ok := m.c.Get(token)
	if !ok {
		return nil, false
	}
	s, ok := v.(*core.Session)
	return s, ok
}

func (m *Memory) Set(token string, s *core.Session) {
	m.c.SetDefault(token, s)
}

func (m *Memory) Delete(token string) {
	m.c.Delete(token)
}
