package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRoles  = "roles"
	ctxClaims = "claims"
)

// UserResolver maps a token subject to the current user id and roles.
type UserResolver interface {
	ResolveUser(ctx context.Context, username string) (uint, []string, error)
}

type AuthMiddleware struct {
	JWTSecret  []byte
	CookieName string
	Denylist   tokens.Denylist
	Users      UserResolver
}

func NewAuthMiddleware(secret []byte, cookieName string, denylist tokens.Denylist, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{
		JWTSecret:  secret,
		CookieName: cookieName,
		Denylist:   denylist,
		Users:      users,
	}
}

type ValidatorFunc func(roles []string) error

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireRole lets the request through when the user holds any of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(have []string) error {
			for _, h := range have {
				for _, want := range roles {
					if h == want {
						return nil
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		})
	}
}

func (m *AuthMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw := m.token(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "invalid token", "error", err)
			c.SetCookie(tokens.DeleteCookie(m.CookieName, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
		}

		if m.Denylist != nil && claims.ID != "" {
			revoked, err := m.Denylist.Revoked(ctx, claims.ID)
			if err != nil {
				l.Error("auth_error", "status", 500, "reason", "denylist lookup", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Unexpected error occurred")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
			}
		}

		userID, roles, err := m.Users.ResolveUser(ctx, claims.Subject)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "unknown subject", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}

		if validator != nil {
			if validationErr := validator(roles); validationErr != nil {
				l.Warn("auth_error", "status", 403, "reason", "missing role", "user_id", userID)
				return validationErr
			}
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRoles, roles)
		c.Set(ctxClaims, claims)
		return next(c)
	}
}

// token reads the session cookie first and an Authorization bearer header second.
func (m *AuthMiddleware) token(c echo.Context) string {
	if ck, err := c.Cookie(m.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Roles(c echo.Context) []string {
	roles, _ := c.Get(ctxRoles).([]string)
	return roles
}

func Claims(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(ctxClaims).(*tokens.AccessClaims)
	return claims
}

// SetUser is used by handler tests to stand in for RequireAuth.
func SetUser(c echo.Context, id uint, roles ...string) {
	c.Set(ctxUserID, id)
	c.Set(ctxRoles, roles)
}
