package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// ActiveChecker reports whether an account may still use its tokens.
type ActiveChecker interface {
	IsUserActive(ctx context.Context, userID string) bool
}

// Authenticate verifies the bearer access token, confirms the account is
// still active and stores the resolved identity on the request context.
func Authenticate(tokens ports.TokenManager, users ActiveChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.GateRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrAuthenticationRequired
			}

			payload, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				metrics.GateRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			ctx := c.Request().Context()
			if !users.IsUserActive(ctx, payload.User.ID) {
				metrics.GateRejectionsTotal.WithLabelValues("blocked").Inc()
				return domain.ErrAccountBlocked
			}

			id := domain.Identity{UserID: payload.User.ID, Role: payload.User.Role}
			c.SetRequest(c.Request().WithContext(domain.ContextWithIdentity(ctx, id)))

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
