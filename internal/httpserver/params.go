package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/util"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func currentUser(c echo.Context) (uint, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	return parseID(c.Param(name), name)
}

func uintQuery(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", name))
	}
	return parseID(raw, name)
}

func parseID(raw, name string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(v), nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", name))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// pageQuery reads page, pageSize, sortBy and sortDir (or sortOrder).
func pageQuery(c echo.Context, allowed map[string]string) util.Page {
	dir := c.QueryParam("sortDir")
	if dir == "" {
		dir = c.QueryParam("sortOrder")
	}
	return util.NewPage(
		util.ParseIntDefault(c.QueryParam("page"), 0),
		util.ParseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize),
		c.QueryParam("sortBy"),
		dir,
		allowed,
	)
}
