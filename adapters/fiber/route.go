// Package fiber wires the auth provider into a Fiber v3 application.
// It is a thin I/O layer: it extracts tokens from transport headers and
// cookies, and maps domain errors to HTTP status codes. No credential
// logic lives here.
package fiber

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/telegive/authd/core"
)

// SessionCookie is the cookie carrying the opaque session token.
// When both the cookie and an Authorization header are present, the
// cookie wins.
const SessionCookie = "session_id"

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// ServiceToken guards the service-to-service endpoints
	// (decrypt-token, deactivate). Empty disables those routes.
	ServiceToken string

	// SessionTTL sets the session cookie lifetime. Defaults to 24h.
	SessionTTL time.Duration

	// SecureCookies marks the session cookie Secure. On in production.
	SecureCookies bool

	// Health is pinged by GET /health when set.
	Health Pinger
}

type Adapter struct {
	app  *fiber.App
	auth core.AuthProvider
	opts Options
}

func New(app *fiber.App, auth core.AuthProvider, opts Options) *Adapter {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &Adapter{app: app, auth: auth, opts: opts}
}

func (a *Adapter) RegisterRoutes() {
	auth := a.app.Group("/api/auth")
	auth.Post("/register", a.register)
	auth.Post("/login", a.login)
	auth.Get("/verify-session", a.verifySession)
	auth.Post("/logout", a.logout)

	accounts := a.app.Group("/api/accounts")
	accounts.Get("/list", a.listAccounts) // before /:id so "list" doesn't match the param
	accounts.Get("/:id", a.getAccount)
	accounts.Get("/:id/validate", a.validateAccount)

	if a.opts.ServiceToken != "" {
		auth.Get("/decrypt-token/:id", a.requireServiceToken, a.decryptToken)
		accounts.Post("/:id/deactivate", a.requireServiceToken, a.deactivateAccount)
		a.app.Get("/api/bots/token/:botId", a.requireServiceToken, a.decryptTokenByBotID)
	}

	a.app.Get("/health", a.health)
}
