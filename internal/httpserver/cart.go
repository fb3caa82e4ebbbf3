package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := uintQuery(c, "productId")
	if err != nil {
		return err
	}
	quantity, err := intQuery(c, "quantity")
	if err != nil {
		return err
	}

	item, err := h.Svc.AddToCart(ctx, userID, productID, quantity)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("item added to cart", "user_id", userID, "product_id", productID, "quantity", quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := uintParam(c, "cartItemId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, itemID); err != nil {
		return fail(l, "remove_from_cart", err)
	}

	l.Info("item removed from cart", "user_id", userID, "cart_item_id", itemID)
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := uintParam(c, "cartItemId")
	if err != nil {
		return err
	}
	quantity, err := intQuery(c, "quantity")
	if err != nil {
		return err
	}

	item, err := h.Svc.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return fail(l, "update_cart_item", err)
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) Content(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.content")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	content, err := h.Svc.GetCartContent(ctx, userID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, content)
}

func (h *CartHTTP) Totals(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.total")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	totals, err := h.Svc.GetTotals(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_total", err)
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return fail(l, "clear_cart", err)
	}

	l.Info("cart cleared", "user_id", userID)
	return c.NoContent(http.StatusNoContent)
}
