package services

import (
	"context"
	"sync"
	"time"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/telegram"
)

// FakeStorage is a test-only in-memory core.AuthStorage. It enforces
// the same uniqueness rules as the postgres adapter (bot_id,
// ciphertext, session token) and exposes error fields for behavior
// injection.
type FakeStorage struct {
	mu sync.RWMutex

	accounts      map[int64]*core.Account
	sessions      map[string]*core.Session
	nextAccountID int64
	nextSessionID int64

	CreateAccountErr  error
	CreateSessionErr  error
	GetSessionErr     error
	SessionCollisions int // forces N token-taken errors before success
}

var _ core.AuthStorage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		accounts: make(map[int64]*core.Account),
		sessions: make(map[string]*core.Session),
	}
}

func cloneAccount(a *core.Account) *core.Account {
	c := *a
	return &c
}

func cloneSession(s *core.Session) *core.Session {
	c := *s
	return &c
}

func (f *FakeStorage) CreateAccount(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateAccountErr != nil {
		return f.CreateAccountErr
	}
	for _, existing := range f.accounts {
		if existing.BotID == a.BotID || existing.TokenCiphertext == a.TokenCiphertext {
			return core.ErrAccountExists
		}
	}

	f.nextAccountID++
	a.ID = f.nextAccountID
	a.CreatedAt = time.Now().UTC()
	f.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (f *FakeStorage) GetAccountByID(_ context.Context, id int64) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (f *FakeStorage) GetAccountByBotID(_ context.Context, botID int64) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, a := range f.accounts {
		if a.BotID == botID {
			return cloneAccount(a), nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (f *FakeStorage) UpdateAccountToken(_ context.Context, id int64, ciphertext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return core.ErrAccountNotFound
	}
	a.TokenCiphertext = ciphertext
	return nil
}

func (f *FakeStorage) TouchLogin(_ context.Context, id int64) error {
	return f.touch(id, func(a *core.Account, now time.Time) { a.LastLoginAt = &now })
}

func (f *FakeStorage) TouchBotCheck(_ context.Context, id int64) error {
	return f.touch(id, func(a *core.Account, now time.Time) { a.LastBotCheckAt = &now })
}

func (f *FakeStorage) touch(id int64, apply func(*core.Account, time.Time)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return core.ErrAccountNotFound
	}
	apply(a, time.Now().UTC())
	return nil
}

func (f *FakeStorage) SetAccountActive(_ context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return core.ErrAccountNotFound
	}
	a.IsActive = active
	return nil
}

func (f *FakeStorage) ListAccounts(_ context.Context, limit, offset int) ([]*core.Account, int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var all []*core.Account
	for id := int64(1); id <= f.nextAccountID; id++ {
		if a, ok := f.accounts[id]; ok {
			all = append(all, cloneAccount(a))
		}
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *FakeStorage) CreateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateSessionErr != nil {
		return f.CreateSessionErr
	}
	if f.SessionCollisions > 0 {
		f.SessionCollisions--
		return core.ErrSessionTokenTaken
	}
	if _, exists := f.sessions[s.Token]; exists {
		return core.ErrSessionTokenTaken
	}

	f.nextSessionID++
	s.ID = f.nextSessionID
	f.sessions[s.Token] = cloneSession(s)
	return nil
}

func (f *FakeStorage) GetSessionByToken(_ context.Context, token string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetSessionErr != nil {
		return nil, f.GetSessionErr
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (f *FakeStorage) UpdateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.Token]
	if !ok {
		return core.ErrSessionNotFound
	}
	stored.ExpiresAt = s.ExpiresAt
	stored.IsActive = s.IsActive
	return nil
}

func (f *FakeStorage) InvalidateAccountSessions(_ context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.AccountID == accountID {
			s.IsActive = false
		}
	}
	return nil
}

func (f *FakeStorage) DeleteExpiredSessions(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	count := 0
	for token, s := range f.sessions {
		if now.After(s.ExpiresAt) {
			delete(f.sessions, token)
			count++
		}
	}
	return count, nil
}

// AccountCount reports persisted accounts, for conflict assertions.
func (f *FakeStorage) AccountCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.accounts)
}

// SessionByToken peeks at raw session state, bypassing validity rules.
func (f *FakeStorage) SessionByToken(token string) *core.Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil
	}
	return cloneSession(s)
}

// FakeAuthority is a test-only Authority returning canned results.
type FakeAuthority struct {
	Info  *telegram.BotInfo
	Err   error
	Calls int
}

var _ Authority = (*FakeAuthority)(nil)

func (f *FakeAuthority) GetMe(_ context.Context, _ string) (*telegram.BotInfo, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Info, nil
}

// FakeNotifier records token update notifications.
type FakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

var _ TokenNotifier = (*FakeNotifier)(nil)

func (f *FakeNotifier) TokenUpdated(_ context.Context, _, _ string, _ int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, status)
	return nil
}

func (f *FakeNotifier) Statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
