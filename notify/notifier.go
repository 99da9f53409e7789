// Package notify pushes bot token updates to the bot service.
// Delivery is best-effort: bounded retries with exponential backoff,
// and failures are logged, never propagated into the credential flows.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	serviceName = "auth-service"
	maxAttempts = 3
)

// StatusActive and StatusRemoved are the status values the bot service
// understands.
const (
	StatusActive  = "active"
	StatusRemoved = "removed"
)

type payload struct {
	BotToken    *string `json:"bot_token"`
	BotUsername string  `json:"bot_username"`
	BotID       int64   `json:"bot_id"`
	Status      string  `json:"status"`
}

type Notifier struct {
	baseURL      string
	serviceToken string
	http         *http.Client
	log          *zap.Logger
}

func New(baseURL, serviceToken string, timeout time.Duration, log *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		http:         &http.Client{Timeout: timeout},
		log:          log,
	}
}

// TokenUpdated notifies the bot service that a bot token became active
// or was removed. The token itself is only carried for active updates.
// Retries up to maxAttempts with exponential backoff; the returned
// error is informational, callers fire-and-forget.
func (n *Notifier) TokenUpdated(ctx context.Context, botToken, botUsername string, botID int64, status string) error {
	body := payload{
		BotUsername: botUsername,
		BotID:       botID,
		Status:      status,
	}
	if status == StatusActive {
		body.BotToken = &botToken
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = n.send(ctx, raw)
		if lastErr == nil {
			n.log.Info("bot service notified",
				zap.Int64("bot_id", botID),
				zap.String("status", status),
				zap.Int("attempt", attempt))
			return nil
		}

		n.log.Warn("bot service notification failed",
			zap.Int64("bot_id", botID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < maxAttempts {
			backoff := time.Duration(1<<attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	n.log.Error("all bot service notification attempts failed",
		zap.Int64("bot_id", botID),
		zap.Error(lastErr))
	return lastErr
}

func (n *Notifier) send(ctx context.Context, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.baseURL+"/bot/token/update", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.serviceToken)
	req.Header.Set("X-Service-Name", serviceName)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bot service returned status %d", resp.StatusCode)
	}
	return nil
}
