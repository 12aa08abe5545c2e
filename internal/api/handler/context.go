package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketly/storefront/internal/api/middleware"
	"github.com/marketly/storefront/internal/core/domain"
)

// ctxUser returns the user admitted by the session guard. Its absence means
// the route was registered without the guard, so fail closed.
func ctxUser(c echo.Context) (*domain.User, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, domain.ErrNoSession
	}
	return u, nil
}

// bindAndValidate decodes the request body into req and runs its validate
// tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
