package invite

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
	"github.com/nutrio/nutrio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires issuer-side management onto the authenticated group
// and the token endpoints onto the public group; an invitee holds only the
// token, not an account.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	nutritionist := auth.RequireRole(auth.RoleNutritionist)
	api.POST("/invites", h.Create, nutritionist)
	api.GET("/invites", h.List, nutritionist)
	api.POST("/invites/:id/revoke", h.Revoke, nutritionist)
	public.GET("/invites/:token", h.Get)
	public.POST("/invites/:token/accept", h.Accept)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := auth.ActorFromContext(c.Request().Context())
	inv, err := h.svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	views, total, err := h.svc.List(c.Request().Context(), actor, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, page.Limit, page.Offset))
}

func (h *Handler) Revoke(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Invite not found")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	inv, err := h.svc.Revoke(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Get(c echo.Context) error {
	v, err := h.svc.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Accept(c echo.Context) error {
	var req AcceptRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.svc.Accept(c.Request().Context(), c.Param("token"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user.Profile())
}
