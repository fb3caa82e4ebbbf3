package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.create")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "create_address", err)
	}

	a, err := h.Svc.CreateAddress(ctx, userID, req)
	if err != nil {
		return fail(l, "create_address", err)
	}

	l.Info("address created", "address_id", a.ID, "user_id", userID)
	return c.JSON(http.StatusCreated, a)
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.update")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_address", err)
	}

	a, err := h.Svc.UpdateAddress(ctx, userID, id, req)
	if err != nil {
		return fail(l, "update_address", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.Svc.GetAddresses(ctx, userID)
	if err != nil {
		return fail(l, "list_addresses", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.delete")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteAddress(ctx, userID, id); err != nil {
		return fail(l, "delete_address", err)
	}

	l.Info("address deleted", "address_id", id, "user_id", userID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Address deleted successfully"})
}

func (h *AddressHTTP) SetDefault(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.set_default")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	a, err := h.Svc.SetDefaultAddress(ctx, userID, id)
	if err != nil {
		return fail(l, "set_default_address", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHTTP) GetDefault(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.get_default")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	a, err := h.Svc.GetDefaultAddress(ctx, userID)
	if err != nil {
		return fail(l, "get_default_address", err)
	}
	return c.JSON(http.StatusOK, a)
}
