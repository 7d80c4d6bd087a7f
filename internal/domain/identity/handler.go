package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the public login endpoint and the authenticated
// profile endpoint.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/auth/login", h.Login)
	api.GET("/me", h.Me)
}

// Login accepts form-encoded credentials (username = email) and returns a
// bearer token.
func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return apperrors.InvalidState("Username and password required")
	}

	resp, err := h.svc.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the caller's own profile.
func (h *Handler) Me(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor == nil {
		return apperrors.Unauthenticated("Authentication required")
	}
	return c.JSON(http.StatusOK, Profile{
		ID:        actor.ID,
		Role:      actor.Role,
		Name:      actor.Name,
		Email:     actor.Email,
		PatientID: actor.PatientID,
	})
}
