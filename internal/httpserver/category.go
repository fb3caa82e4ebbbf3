package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CatalogService
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "create_category", err)
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category", err)
	}

	l.Info("category created", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	list, err := h.Svc.ListCategories(ctx, pageQuery(c, service.CategorySortColumns))
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.CategoryRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_category", err)
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fail(l, "update_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	cat, err := h.Svc.DeleteCategory(ctx, id)
	if err != nil {
		return fail(l, "delete_category", err)
	}

	l.Info("category deleted", "category_id", id)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.add_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	categoryID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "add_product", err)
	}

	p, err := h.Svc.AddProduct(ctx, categoryID, req, userID)
	if err != nil {
		return fail(l, "add_product", err)
	}

	l.Info("product created", "product_id", p.ID, "category_id", categoryID, "seller_id", userID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CategoryHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.products")

	categoryID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	list, err := h.Svc.ListProductsByCategory(ctx, categoryID, pageQuery(c, service.ProductSortColumns))
	if err != nil {
		return fail(l, "list_category_products", err)
	}
	return c.JSON(http.StatusOK, list)
}
