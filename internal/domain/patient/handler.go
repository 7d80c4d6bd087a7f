package patient

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	nutritionist := auth.RequireRole(auth.RoleNutritionist)
	api.POST("/patients", h.Create, nutritionist)
	api.GET("/patients", h.List, nutritionist)
	api.GET("/patients/:id", h.Get)
	api.PUT("/patients/:id", h.Update)
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
	p, err := h.svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	patients, err := h.svc.List(c.Request().Context(), actor, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Patient not found")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Patient not found")
	}

	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&patch); err != nil {
		return err
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.Update(c.Request().Context(), actor, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
