package fiber

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/telegive/authd/core"
	"github.com/telegive/authd/telegram"
)

// extractSessionToken pulls the session token from the session cookie,
// falling back to an Authorization bearer header. Cookie wins when both
// are present.
func (a *Adapter) extractSessionToken(c fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[len("Bearer "):]
	}
	return ""
}

func (a *Adapter) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		MaxAge:   int(a.opts.SessionTTL / time.Second),
		HTTPOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// requireServiceToken gates service-to-service endpoints on the shared
// X-Service-Token header.
func (a *Adapter) requireServiceToken(c fiber.Ctx) error {
	provided := c.Get("X-Service-Token")
	if provided == "" ||
		subtle.ConstantTimeCompare([]byte(provided), []byte(a.opts.ServiceToken)) != 1 {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success":    false,
			"error":      "invalid service token",
			"error_code": "UNAUTHORIZED",
		})
	}
	return c.Next()
}

// handleError converts a domain error into the transport response. The
// kind travels as a machine-readable code; unrecognized errors collapse
// into a generic internal failure so storage and cipher detail never
// leaves the process.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	status, code, message := classify(err)
	return c.Status(status).JSON(fiber.Map{
		"success":    false,
		"error":      message,
		"error_code": code,
	})
}

func classify(err error) (int, string, string) {
	// Authority outcomes surface with their own codes (registration
	// flow only; login collapses them before they get here).
	switch {
	case errors.Is(err, telegram.ErrTokenRejected):
		return http.StatusUnauthorized, "INVALID_TOKEN", err.Error()
	case errors.Is(err, telegram.ErrBotNotFound):
		return http.StatusNotFound, "BOT_NOT_FOUND", err.Error()
	case errors.Is(err, telegram.ErrNotABot):
		return http.StatusBadRequest, "NOT_A_BOT", err.Error()
	case errors.Is(err, telegram.ErrAPIError):
		return http.StatusBadGateway, "TELEGRAM_API_ERROR", err.Error()
	case errors.Is(err, telegram.ErrTimeout):
		return http.StatusGatewayTimeout, "TIMEOUT", err.Error()
	case errors.Is(err, telegram.ErrConnection):
		return http.StatusBadGateway, "CONNECTION_ERROR", err.Error()
	case errors.Is(err, telegram.ErrUnexpectedStatus):
		return http.StatusBadGateway, "API_ERROR", err.Error()
	}

	code := core.Code(err)
	if status, ok := statusByCode[code]; ok {
		return status, code, err.Error()
	}
	return http.StatusInternalServerError, core.CodeInternal, "internal server error"
}

var statusByCode = map[string]int{
	core.CodeMissingToken:         http.StatusBadRequest,
	core.CodeInvalidTokenFormat:   http.StatusBadRequest,
	core.CodeAccountExists:        http.StatusConflict,
	core.CodeAccountNotFound:      http.StatusNotFound,
	core.CodeInvalidCredentials:   http.StatusUnauthorized,
	core.CodeAccountDeactivated:   http.StatusForbidden,
	core.CodeTokenUnavailable:     http.StatusNotFound,
	core.CodeInvalidSessionFormat: http.StatusBadRequest,
	core.CodeInvalidSession:       http.StatusUnauthorized,
	core.CodeAccountInactive:      http.StatusForbidden,
}
