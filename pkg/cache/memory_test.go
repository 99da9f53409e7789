package cache

import (
	"testing"
	"time"

	"github.com/telegive/authd/core"
)

func testSession(token string) *core.Session {
	now := time.Now().UTC()
	return &core.Session{
		ID:        1,
		Token:     token,
		AccountID: 42,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestMemory_SetGetDelete(t *testing.T) {
	m := NewMemory(time.Minute)

	const token = "sess_AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	if _, ok := m.Get(token); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	m.Set(token, testSession(token))
	got, ok := m.Get(token)
	if !ok {
		t.Fatal("Get() missed after Set()")
	}
	if got.AccountID != 42 || got.Token != token {
		t.Errorf("Get() = %+v", got)
	}

	m.Delete(token)
	if _, ok := m.Get(token); ok {
		t.Error("Get() hit after Delete()")
	}

	// Deleting again is a no-op.
	m.Delete(token)
}

func TestMemory_EntriesExpire(t *testing.T) {
	m := NewMemory(20 * time.Millisecond)

	const token = "sess_BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	m.Set(token, testSession(token))

	time.Sleep(50 * time.Millisecond)
	if _, ok := m.Get(token); ok {
		t.Error("entry survived past its TTL")
	}
}
