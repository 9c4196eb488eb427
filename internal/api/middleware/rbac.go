package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated identity
// holds one of the given roles. Mount after Authenticate.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return requireRole(domain.ErrAccessDenied, roles)
}

// RequireAdmin is RequireRole(admin) with the admin-specific denial.
func RequireAdmin() echo.MiddlewareFunc {
	return requireRole(domain.ErrAdminRequired, []domain.Role{domain.RoleAdmin})
}

func requireRole(denied error, roles []domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return domain.ErrAuthenticationRequired
			}
			if _, ok := allowed[id.Role]; !ok {
				return denied
			}
			return next(c)
		}
	}
}

// RequireOwnerOrAdmin admits admins and the account named by the path
// parameter param.
func RequireOwnerOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return domain.ErrAuthenticationRequired
			}
			if !id.CanAccess(c.Param(param)) {
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}
