package prescription

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
	api.POST("/prescriptions", h.Create, nutritionist)
	api.GET("/prescriptions/:id", h.Get)
	api.PUT("/prescriptions/:id", h.Update, nutritionist)
	api.POST("/prescriptions/:id/publish", h.Publish, nutritionist)
	api.POST("/prescriptions/:id/duplicate", h.Duplicate, nutritionist)
	api.GET("/patients/:id/prescriptions", h.ListForPatient)
	api.GET("/patients/:id/latest", h.LatestPublished)
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

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Prescription not found")
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
		return apperrors.NotFound("Prescription not found")
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

func (h *Handler) Publish(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Prescription not found")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.Publish(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Duplicate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Prescription not found")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.Duplicate(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Patient not found")
	}

	page := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	out, err := h.svc.ListForPatient(c.Request().Context(), actor, patientID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// LatestPublished renders a JSON null body when the patient has no
// published plan.
func (h *Handler) LatestPublished(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NotFound("Patient not found")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	p, err := h.svc.LatestPublished(c.Request().Context(), actor, patientID)
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, p)
}
