package core

import "time"

// PublicAccount is the redacted account view returned to external
// callers. It carries no credential material and no internal status
// timestamps.
type PublicAccount struct {
	ID                 int64     `json:"id"`
	BotUsername        string    `json:"bot_username"`
	BotName            string    `json:"bot_name"`
	ChannelUsername    string    `json:"channel_username"`
	ChannelTitle       string    `json:"channel_title"`
	ChannelMemberCount int       `json:"channel_member_count"`
	ChannelVerified    bool      `json:"channel_verified"`
	CreatedAt          time.Time `json:"created_at"`
}

// PublicView returns the redacted representation of the account.
func (a *Account) PublicView() *PublicAccount {
	return &PublicAccount{
		ID:                 a.ID,
		BotUsername:        a.BotUsername,
		BotName:            a.BotName,
		ChannelUsername:    a.ChannelUsername,
		ChannelTitle:       a.ChannelTitle,
		ChannelMemberCount: a.ChannelMemberCount,
		ChannelVerified:    a.ChannelVerified,
		CreatedAt:          a.CreatedAt,
	}
}

// BotSummary is the minimal bot identity echoed back on registration.
type BotSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// RegisterResult is returned on successful bot registration.
type RegisterResult struct {
	AccountID            int64      `json:"account_id"`
	Bot                  BotSummary `json:"bot_info"`
	RequiresChannelSetup bool       `json:"requires_channel_setup"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	SessionToken string         `json:"session_id"`
	Account      *PublicAccount `json:"account_info"`
}

// VerifyResult is returned when a session token verifies.
type VerifyResult struct {
	Account   *PublicAccount `json:"account_info"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// AccountValidation reports existence and liveness of an account for
// service-to-service checks.
type AccountValidation struct {
	AccountID   int64  `json:"account_id"`
	Exists      bool   `json:"exists"`
	IsActive    bool   `json:"is_active"`
	BotUsername string `json:"bot_username,omitempty"`
}

// AccountPage is one page of the paginated account listing.
type AccountPage struct {
	Accounts []*PublicAccount `json:"accounts"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}
