// Package telegram talks to the Telegram Bot API to confirm that a bot
// token is live and belongs to a bot principal. It is the only
// component in the service that performs outbound network I/O for the
// credential lifecycle, which keeps it the single mock seam in tests.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.telegram.org"

// Exactly one of these (or success) comes back from GetMe.
var (
	ErrMissingToken     = errors.New("bot token is required")              // no call made
	ErrTokenRejected    = errors.New("invalid bot token")                  // authority returned 401
	ErrBotNotFound      = errors.New("bot not found")                      // authority returned 404
	ErrNotABot          = errors.New("token does not belong to a bot")     // valid identity, wrong class
	ErrAPIError         = errors.New("telegram api error")                 // ok=false with description
	ErrTimeout          = errors.New("request to telegram api timed out")
	ErrConnection       = errors.New("failed to connect to telegram api")
	ErrUnexpectedStatus = errors.New("unexpected telegram api status")
)

// BotInfo is the authority's description of the bot principal.
type BotInfo struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	Username                string `json:"username"`
	FirstName               string `json:"first_name"`
	CanJoinGroups           bool   `json:"can_join_groups"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries"`
}

type getMeResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      *BotInfo `json:"result"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// GetMe calls the authority's introspection endpoint for the given bot
// token and classifies the outcome.
func (c *Client) GetMe(ctx context.Context, botToken string) (*BotInfo, error) {
	if botToken == "" {
		return nil, ErrMissingToken
	}

	url := fmt.Sprintf("%s/bot%s/getMe", c.baseURL, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to body handling
	case http.StatusUnauthorized:
		return nil, ErrTokenRejected
	case http.StatusNotFound:
		return nil, ErrBotNotFound
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body getMeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrAPIError, err)
	}

	if !body.OK {
		desc := body.Description
		if desc == "" {
			desc = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrAPIError, desc)
	}
	if body.Result == nil {
		return nil, fmt.Errorf("%w: missing result", ErrAPIError)
	}
	if !body.Result.IsBot {
		return nil, ErrNotABot
	}

	c.log.Debug("bot token verified",
		zap.Int64("bot_id", body.Result.ID),
		zap.String("bot_username", body.Result.Username))

	return body.Result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
