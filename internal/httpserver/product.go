package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	list, err := h.Svc.ListProducts(ctx, pageQuery(c, service.ProductSortColumns))
	if err != nil {
		return fail(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	keyword := c.Param("keyword")
	list, err := h.Svc.SearchProducts(ctx, keyword, pageQuery(c, service.ProductSortColumns))
	if err != nil {
		return fail(l, "search_products", err)
	}

	l.Info("products searched", "keyword", keyword, "hits", list.TotalElements)
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_product", err)
	}

	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "update_product", err)
	}

	l.Info("product updated", "product_id", id)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) UpdateImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_image")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req transport.ProductImageRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_product_image", err)
	}

	p, err := h.Svc.UpdateProductImage(ctx, id, req.Image)
	if err != nil {
		return fail(l, "update_product_image", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Svc.DeleteProduct(ctx, id)
	if err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("product deleted", "product_id", id)
	return c.JSON(http.StatusOK, p)
}
