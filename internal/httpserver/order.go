package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

// PlaceOrder checks the cart out into an order.
func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.OrderRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "place_order", err)
	}

	order, err := h.Svc.Checkout(ctx, userID, req)
	if err != nil {
		return fail(l, "place_order", err)
	}

	l.Info("order placed", "order_id", order.ID, "user_id", userID, "total", order.TotalPrice.String())
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.Svc.ListOrders(ctx, userID, pageQuery(c, nil))
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, list)
}
