package authd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/pkg/cache"
	"github.com/telegive/authd/services"
	"github.com/telegive/authd/telegram"
)

const e2eBotToken = "555000111:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Requirement: New rejects configurations missing a required
// collaborator before doing any work.
func TestNew_Validation(t *testing.T) {
	storage := services.NewFakeStorage()
	authority := &services.FakeAuthority{}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing master secret",
			cfg:     Config{Storage: storage, Authority: authority},
			wantErr: core.ErrMasterSecretRequired,
		},
		{
			name:    "missing storage",
			cfg:     Config{MasterSecret: "secret", Authority: authority},
			wantErr: core.ErrStorageRequired,
		},
		{
			name:    "missing authority",
			cfg:     Config{MasterSecret: "secret", Storage: storage},
			wantErr: core.ErrAuthorityRequired,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.cfg); !errors.Is(err, test.wantErr) {
				t.Errorf("New() error = %v, want %v", err, test.wantErr)
			}
		})
	}

	if svc, err := New(Config{MasterSecret: "secret", Storage: storage, Authority: authority}); err != nil || svc == nil {
		t.Fatalf("New() with full config = %v, %v", svc, err)
	}
}

// Full credential lifecycle against a stubbed Telegram API: register,
// login, verify, logout, verify again.
func TestService_Lifecycle(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":555000111,"is_bot":true,"username":"lifecycle_bot","first_name":"Lifecycle Bot"}}`)
	}))
	defer stub.Close()

	svc, err := New(Config{
		MasterSecret: "e2e-master-secret",
		Storage:      services.NewFakeStorage(),
		Authority:    telegram.NewClient(stub.URL, 5*time.Second, nil),
		Cache:        cache.NewMemory(time.Minute),
		SessionTTL:   time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	reg, err := svc.Register(ctx, e2eBotToken)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Bot.Username != "lifecycle_bot" {
		t.Errorf("Bot.Username = %q", reg.Bot.Username)
	}

	if _, err := svc.Register(ctx, e2eBotToken); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("second Register() error = %v, want %v", err, ErrAccountExists)
	}

	login, err := svc.Login(ctx, e2eBotToken)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if ok, _ := regexp.MatchString(`^sess_[A-Za-z0-9]{32}$`, login.SessionToken); !ok {
		t.Fatalf("session token %q has unexpected shape", login.SessionToken)
	}

	verify, err := svc.VerifySession(ctx, login.SessionToken)
	if err != nil {
		t.Fatalf("VerifySession() error = %v", err)
	}
	if verify.Account.ID != reg.AccountID {
		t.Errorf("verified account %d, registered %d", verify.Account.ID, reg.AccountID)
	}

	if err := svc.Logout(ctx, login.SessionToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.VerifySession(ctx, login.SessionToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("VerifySession() after logout error = %v, want %v", err, ErrInvalidSession)
	}

	// The stored credential is still recoverable for trusted callers.
	plaintext, err := svc.DecryptToken(ctx, reg.AccountID)
	if err != nil {
		t.Fatalf("DecryptToken() error = %v", err)
	}
	if plaintext != e2eBotToken {
		t.Error("decrypted token differs from the registered one")
	}
}

// A rejected token never creates an account.
func TestService_RegisterRejectedByAuthority(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok":false,"description":"Unauthorized"}`)
	}))
	defer stub.Close()

	storage := services.NewFakeStorage()
	svc, err := New(Config{
		MasterSecret: "e2e-master-secret",
		Storage:      storage,
		Authority:    telegram.NewClient(stub.URL, 5*time.Second, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Register(context.Background(), e2eBotToken); !errors.Is(err, telegram.ErrTokenRejected) {
		t.Fatalf("Register() error = %v, want %v", err, telegram.ErrTokenRejected)
	}
	if storage.AccountCount() != 0 {
		t.Error("account persisted for rejected token")
	}
}
