package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	list, err := h.Svc.ListUsers(ctx, pageQuery(c, service.UserSortColumns))
	if err != nil {
		return fail(l, "list_users", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return fail(l, "delete_user", err)
	}

	l.Info("user deleted", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User deleted successfully"})
}
