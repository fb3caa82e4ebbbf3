package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc        *service.AuthService
	CookieName string
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "signup", err)
	}

	res, err := h.Svc.Signup(ctx, req)
	if err != nil {
		return fail(l, "signup", err)
	}

	l.Info("user registered", "user_id", res.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.SigninRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "signin", err)
	}

	res, err := h.Svc.Signin(ctx, req)
	if err != nil {
		return fail(l, "signin", err)
	}

	c.SetCookie(tokens.CreateCookie(h.CookieName, res.Token, "/", res.Claims.ExpiresAt.Time))
	l.Info("user signed in", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHTTP) AccountDetails(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.account")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	me, err := h.Svc.AccountDetails(ctx, userID)
	if err != nil {
		return fail(l, "account_details", err)
	}
	return c.JSON(http.StatusOK, me)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, authmw.Claims(c)); err != nil {
		return fail(l, "logout", err)
	}

	c.SetCookie(tokens.DeleteCookie(h.CookieName, "/"))
	l.Info("user signed out")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "You've been signed out!"})
}
