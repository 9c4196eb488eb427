package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	FullName  string `json:"full_name" validate:"max=255"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email" validate:"max=100"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Envelope{data=domain.AuthResult}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), domain.RegistrationInput{
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
		Email:     req.Email,
		Password:  req.Password,
	})
	metrics.ObserveAuth("register", err)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User registered successfully", result)
}

// Login authenticates a user and returns a fresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=domain.AuthResult}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.ObserveAuth("login", err)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", result)
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  Envelope{data=domain.TokenPair}
// @Failure      401   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.RefreshToken == "" {
		metrics.ObserveAuth("refresh", domain.ErrInvalidToken)
		return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token is required")
	}

	pair, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	metrics.ObserveAuth("refresh", err)
	if err != nil {
		if msg, ok := refreshRejection(err); ok {
			return echo.NewHTTPError(http.StatusUnauthorized, msg)
		}
		return err
	}

	return respond(c, http.StatusOK, "Token refreshed successfully", pair)
}

// refreshRejection maps the expected refresh failures onto a 401 message.
func refreshRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return "Invalid or expired token", true
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found", true
	case errors.Is(err, domain.ErrAccountBlocked):
		return "User account is blocked", true
	}
	return "", false
}
