package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// UserHandler serves the /users routes. Every route sits behind Authenticate.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type statusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// Me handles GET /users/me.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=domain.PublicUser}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetCurrentUser(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Current user retrieved successfully", user)
}

// List handles GET /users.
//
// @Summary      List users
// @Description  Admin only. Newest accounts first.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.PublicUser}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.GetAllUsers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", users)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  Envelope{data=domain.PublicUser}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUserByID(c.Request().Context(), c.Param("id"), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", user)
}

// SetStatus handles PATCH /users/:id/status.
//
// @Summary      Block or unblock a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "User id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  Envelope{data=domain.PublicUser}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.SetActiveStatus(c.Request().Context(), c.Param("id"), *req.IsActive, id)
	if err != nil {
		return err
	}

	action := "blocked"
	if user.IsActive {
		action = "activated"
	}
	metrics.UserStatusChangesTotal.WithLabelValues(action).Inc()

	return respond(c, http.StatusOK, "User "+action+" successfully", user)
}
