package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// ctxIdentity returns the identity the Authenticate middleware stored on the
// request context. Its absence means the route was mounted without the gate.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok || id.UserID == "" {
		return domain.Identity{}, domain.ErrAuthenticationRequired
	}
	return id, nil
}
