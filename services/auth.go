package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/notify"
	"github.com/telegive/authd/pkg/crypto"
	"github.com/telegive/authd/telegram"
)

// Authority is the seam to the external token-issuing authority. The
// telegram client implements it; tests substitute a fake.
type Authority interface {
	GetMe(ctx context.Context, botToken string) (*telegram.BotInfo, error)
}

// TokenNotifier receives best-effort token update events. Delivery
// failures never affect credential flows.
type TokenNotifier interface {
	TokenUpdated(ctx context.Context, botToken, botUsername string, botID int64, status string) error
}

// AuthService composes the cipher, the authority client, the account
// store and the session engine into the register/login/verify/logout
// flows.
type AuthService struct {
	storage   core.AuthStorage
	cipher    *crypto.Cipher
	authority Authority
	sessions  *SessionManager
	notifier  TokenNotifier // optional
	log       *zap.Logger
}

var _ core.AuthProvider = (*AuthService)(nil)

func NewAuthService(storage core.AuthStorage, cipher *crypto.Cipher, authority Authority, sessions *SessionManager, notifier TokenNotifier, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		storage:   storage,
		cipher:    cipher,
		authority: authority,
		sessions:  sessions,
		notifier:  notifier,
		log:       log,
	}
}

// Register validates a bot token with Telegram and creates the account.
// Registration is create-or-reject: the storage unique constraint is
// the authoritative arbiter when two registrations race.
func (s *AuthService) Register(ctx context.Context, botToken string) (*core.RegisterResult, error) {
	botToken = strings.TrimSpace(botToken)
	if botToken == "" {
		return nil, core.ErrMissingToken
	}
	if !crypto.VerifyBotTokenFormat(botToken) {
		return nil, core.ErrInvalidTokenFormat
	}

	botID, err := crypto.ExtractBotID(botToken)
	if err != nil {
		return nil, core.ErrInvalidTokenFormat
	}

	// Cheap pre-check; the create below still tolerates a
	// late-arriving duplicate.
	if _, err := s.storage.GetAccountByBotID(ctx, botID); err == nil {
		return nil, core.ErrAccountExists
	} else if err != core.ErrAccountNotFound {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	// Authority errors surface with their specific kind during
	// registration; the caller is fixing a credential and the
	// distinction helps.
	info, err := s.authority.GetMe(ctx, botToken)
	if err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(botToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt bot token: %w", err)
	}

	account := &core.Account{
		BotID:           info.ID,
		TokenCiphertext: ciphertext,
		BotUsername:     info.Username,
		BotName:         info.FirstName,
		ChannelTitle:    "Setup Required",
		IsActive:        true,
		BotVerified:     true,
	}
	if account.BotName == "" {
		account.BotName = "Unknown Bot"
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		if err == core.ErrAccountExists {
			return nil, core.ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("new account registered",
		zap.Int64("account_id", account.ID),
		zap.Int64("bot_id", account.BotID),
		zap.String("bot_username", account.BotUsername))

	s.notifyTokenUpdate(botToken, account.BotUsername, account.BotID, notify.StatusActive)

	return &core.RegisterResult{
		AccountID: account.ID,
		Bot: core.BotSummary{
			ID:        info.ID,
			Username:  info.Username,
			FirstName: info.FirstName,
		},
		RequiresChannelSetup: !account.ChannelVerified,
	}, nil
}

// Login authenticates a bot token against the locally stored ciphertext
// and opens a session. No authority round trip: the decrypted stored
// token is byte-compared to the submitted one, and every mismatch
// (missing account, wrong secret, decryption failure) collapses into
// ErrInvalidCredentials so the failure mode cannot be probed.
func (s *AuthService) Login(ctx context.Context, botToken string) (*core.LoginResult, error) {
	botToken = strings.TrimSpace(botToken)
	if botToken == "" {
		return nil, core.ErrMissingToken
	}
	if !crypto.VerifyBotTokenFormat(botToken) {
		return nil, core.ErrInvalidTokenFormat
	}

	botID, err := crypto.ExtractBotID(botToken)
	if err != nil {
		return nil, core.ErrInvalidTokenFormat
	}

	account, err := s.storage.GetAccountByBotID(ctx, botID)
	if err != nil {
		if err == core.ErrAccountNotFound {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	stored, err := s.cipher.Decrypt(account.TokenCiphertext)
	if err != nil {
		s.log.Warn("stored token decryption failed during login",
			zap.Int64("account_id", account.ID), zap.Error(err))
		return nil, core.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(botToken)) != 1 {
		return nil, core.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, core.ErrAccountDeactivated
	}

	session, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	if err := s.storage.TouchLogin(ctx, account.ID); err != nil {
		s.log.Warn("failed to update last login timestamp",
			zap.Int64("account_id", account.ID), zap.Error(err))
	}

	s.log.Info("login successful",
		zap.Int64("account_id", account.ID),
		zap.Int64("bot_id", account.BotID))

	return &core.LoginResult{
		SessionToken: session.Token,
		Account:      account.PublicView(),
	}, nil
}

// VerifySession resolves a session token to its account. A session
// whose account has gone missing or inactive is invalidated as a side
// effect.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*core.VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, core.ErrInvalidSession
	}
	if !crypto.VerifySessionTokenFormat(token) {
		return nil, core.ErrInvalidSessionFormat
	}

	session, err := s.sessions.GetValid(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, core.ErrInvalidSession
	}

	account, err := s.storage.GetAccountByID(ctx, session.AccountID)
	if err != nil && err != core.ErrAccountNotFound {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if account == nil || !account.IsActive {
		if invErr := s.sessions.Invalidate(ctx, session); invErr != nil {
			s.log.Warn("failed to invalidate session for inactive account",
				zap.Int64("session_id", session.ID), zap.Error(invErr))
		}
		return nil, core.ErrAccountInactive
	}

	return &core.VerifyResult{
		Account:   account.PublicView(),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout invalidates the session if one exists. Idempotent no-op for
// missing, malformed or already-dead tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || !crypto.VerifySessionTokenFormat(token) {
		return nil
	}

	session, err := s.storage.GetSessionByToken(ctx, token)
	if err != nil {
		if err == core.ErrSessionNotFound {
			return nil
		}
		return fmt.Errorf("find session: %w", err)
	}

	if err := s.sessions.Invalidate(ctx, session); err != nil {
		return err
	}
	s.log.Info("logout", zap.Int64("account_id", session.AccountID))
	return nil
}

// DecryptToken returns the plaintext bot token for trusted service
// callers and stamps the credential check time. Decryption failure
// degrades to ErrTokenUnavailable rather than a hard error: the rest of
// the account row stays useful for display reads.
func (s *AuthService) DecryptToken(ctx context.Context, accountID int64) (string, error) {
	account, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return s.decryptFor(ctx, account)
}

// DecryptTokenByBotID is DecryptToken keyed by the bot's external ID.
func (s *AuthService) DecryptTokenByBotID(ctx context.Context, botID int64) (string, error) {
	account, err := s.storage.GetAccountByBotID(ctx, botID)
	if err != nil {
		return "", err
	}
	return s.decryptFor(ctx, account)
}

func (s *AuthService) decryptFor(ctx context.Context, account *core.Account) (string, error) {
	if !account.IsActive {
		return "", core.ErrAccountDeactivated
	}

	plaintext, err := s.cipher.Decrypt(account.TokenCiphertext)
	if err != nil {
		s.log.Error("stored token decryption failed",
			zap.Int64("account_id", account.ID), zap.Error(err))
		return "", core.ErrTokenUnavailable
	}

	if err := s.storage.TouchBotCheck(ctx, account.ID); err != nil {
		s.log.Warn("failed to update bot check timestamp",
			zap.Int64("account_id", account.ID), zap.Error(err))
	}
	return plaintext, nil
}

// GetAccount returns the public view of an account.
func (s *AuthService) GetAccount(ctx context.Context, accountID int64) (*core.PublicAccount, error) {
	account, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.PublicView(), nil
}

// GetAccountByBotID returns the public view keyed by the bot's
// external ID.
func (s *AuthService) GetAccountByBotID(ctx context.Context, botID int64) (*core.PublicAccount, error) {
	account, err := s.storage.GetAccountByBotID(ctx, botID)
	if err != nil {
		return nil, err
	}
	return account.PublicView(), nil
}

// ValidateAccount reports existence and liveness without failing on a
// missing account.
func (s *AuthService) ValidateAccount(ctx context.Context, accountID int64) (*core.AccountValidation, error) {
	account, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		if err == core.ErrAccountNotFound {
			return &core.AccountValidation{AccountID: accountID}, nil
		}
		return nil, err
	}
	return &core.AccountValidation{
		AccountID:   account.ID,
		Exists:      true,
		IsActive:    account.IsActive,
		BotUsername: account.BotUsername,
	}, nil
}

// ListAccounts returns one page of public account views.
func (s *AuthService) ListAccounts(ctx context.Context, page, perPage int) (*core.AccountPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	accounts, total, err := s.storage.ListAccounts(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]*core.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.PublicView())
	}
	return &core.AccountPage{
		Accounts: views,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}, nil
}

// DeactivateAccount flips the account inactive, kills its sessions and
// tells the bot service the token went away.
func (s *AuthService) DeactivateAccount(ctx context.Context, accountID int64) error {
	account, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.storage.SetAccountActive(ctx, accountID, false); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if err := s.sessions.InvalidateAccountSessions(ctx, accountID); err != nil {
		s.log.Warn("failed to invalidate sessions on deactivation",
			zap.Int64("account_id", accountID), zap.Error(err))
	}

	s.log.Info("account deactivated", zap.Int64("account_id", accountID))
	s.notifyTokenUpdate("", account.BotUsername, account.BotID, notify.StatusRemoved)
	return nil
}

// notifyTokenUpdate fires the bot-service notification without tying it
// to the request lifetime. Core correctness never depends on delivery.
func (s *AuthService) notifyTokenUpdate(botToken, botUsername string, botID int64, status string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.notifier.TokenUpdated(ctx, botToken, botUsername, botID, status)
	}()
}
