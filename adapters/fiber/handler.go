package fiber

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/telegive/authd/core"
)

type credentialRequest struct {
	BotToken string `json:"bot_token"`
}

func (a *Adapter) register(c fiber.Ctx) error {
	var req credentialRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "request body must be JSON")
	}

	result, err := a.auth.Register(c.Context(), req.BotToken)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":                true,
		"account_id":             result.AccountID,
		"bot_info":               result.Bot,
		"requires_channel_setup": result.RequiresChannelSetup,
	})
}

func (a *Adapter) login(c fiber.Ctx) error {
	var req credentialRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "request body must be JSON")
	}

	result, err := a.auth.Login(c.Context(), req.BotToken)
	if err != nil {
		return a.handleError(c, err)
	}

	a.setSessionCookie(c, result.SessionToken)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":      true,
		"session_id":   result.SessionToken,
		"account_info": result.Account,
	})
}

func (a *Adapter) verifySession(c fiber.Ctx) error {
	token := a.extractSessionToken(c)

	result, err := a.auth.VerifySession(c.Context(), token)
	if err != nil {
		// An unusable session also clears any client-side state.
		if err == core.ErrInvalidSession || err == core.ErrAccountInactive {
			a.clearSessionCookie(c)
		}
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":      true,
		"account_info": result.Account,
		"expires_at":   result.ExpiresAt,
	})
}

func (a *Adapter) logout(c fiber.Ctx) error {
	token := a.extractSessionToken(c)

	if err := a.auth.Logout(c.Context(), token); err != nil {
		return a.handleError(c, err)
	}

	a.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "logged out successfully",
	})
}

func (a *Adapter) decryptToken(c fiber.Ctx) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return badRequest(c, "account id must be a positive number")
	}

	token, err := a.auth.DecryptToken(c.Context(), id)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":   true,
		"bot_token": token,
	})
}

func (a *Adapter) decryptTokenByBotID(c fiber.Ctx) error {
	botID, err := paramInt64(c, "botId")
	if err != nil {
		return badRequest(c, "bot id must be a positive number")
	}

	token, err := a.auth.DecryptTokenByBotID(c.Context(), botID)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":   true,
		"bot_token": token,
	})
}

func (a *Adapter) getAccount(c fiber.Ctx) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return badRequest(c, "account id must be a positive number")
	}

	account, err := a.auth.GetAccount(c.Context(), id)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"account": account,
	})
}

func (a *Adapter) validateAccount(c fiber.Ctx) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return badRequest(c, "account id must be a positive number")
	}

	validation, err := a.auth.ValidateAccount(c.Context(), id)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":    true,
		"validation": validation,
	})
}

func (a *Adapter) listAccounts(c fiber.Ctx) error {
	page := fiber.Query(c, "page", 1)
	perPage := fiber.Query(c, "per_page", 20)

	result, err := a.auth.ListAccounts(c.Context(), page, perPage)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":  true,
		"accounts": result.Accounts,
		"pagination": fiber.Map{
			"page":     result.Page,
			"per_page": result.PerPage,
			"total":    result.Total,
		},
	})
}

func (a *Adapter) deactivateAccount(c fiber.Ctx) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return badRequest(c, "account id must be a positive number")
	}

	if err := a.auth.DeactivateAccount(c.Context(), id); err != nil {
		return a.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "account deactivated",
	})
}

func (a *Adapter) health(c fiber.Ctx) error {
	status := "healthy"
	dbStatus := "not_configured"
	code := http.StatusOK

	if a.opts.Health != nil {
		if err := a.opts.Health.Ping(c.Context()); err != nil {
			status = "unhealthy"
			dbStatus = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			dbStatus = "connected"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": dbStatus,
	})
}

func paramInt64(c fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"success":    false,
		"error":      message,
		"error_code": "INVALID_REQUEST",
	})
}
