package core

import "time"

// Account represents one registered bot identity.
//
// The bot ID assigned by Telegram is the natural external key; other
// services reference accounts either by it or by the surrogate ID.
type Account struct {
	ID int64 `json:"id"`

	// Bot identity and encrypted credential
	BotID           int64  `json:"bot_id"`
	TokenCiphertext string `json:"-"` // Never expose in JSON
	BotUsername     string `json:"bot_username"`
	BotName         string `json:"bot_name"`

	// Channel info (managed by the channel service, stored here)
	ChannelID          int64  `json:"channel_id"`
	ChannelUsername    string `json:"channel_username"`
	ChannelTitle       string `json:"channel_title"`
	ChannelMemberCount int    `json:"channel_member_count"`

	// Permissions (managed by the channel service)
	CanPostMessages bool `json:"can_post_messages"`
	CanEditMessages bool `json:"can_edit_messages"`
	CanSendMedia    bool `json:"can_send_media"`

	// Account status
	IsActive        bool `json:"is_active"`
	BotVerified     bool `json:"bot_verified"`
	ChannelVerified bool `json:"channel_verified"`

	// Timestamps
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	LastBotCheckAt *time.Time `json:"last_bot_check_at,omitempty"`
}

// Session represents one active login.
//
// A session is usable if and only if IsActive is true and the current
// time is not past ExpiresAt. Both conditions are re-checked on every
// use; neither is cached.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"` // Never expose in JSON (security!)
	AccountID int64     `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// Usable reports whether the session can authenticate a request at
// the given instant.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && !now.After(s.ExpiresAt)
}

// Expired reports whether the session's expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
