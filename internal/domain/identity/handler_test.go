package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

func loginRequest(t *testing.T, h *Handler, username, password string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return rec, h.Login(e.NewContext(req, rec))
}

func TestLoginHandler(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateNutritionist(context.Background(), "Dr. Pro", "pro@x.com", "secret-pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewHandler(svc)

	rec, err := loginRequest(t, h, "pro@x.com", "secret-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Errorf("unexpected token response: %+v", resp)
	}
}

func TestLoginHandler_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateNutritionist(context.Background(), "Dr. Pro", "pro@x.com", "secret-pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewHandler(svc)

	if _, err := loginRequest(t, h, "pro@x.com", "wrong"); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("wrong password: expected invalid_state, got %v", err)
	}
	if _, err := loginRequest(t, h, "", ""); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("missing fields: expected invalid_state, got %v", err)
	}
}

func TestMeHandler(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)

	user, err := svc.CreateNutritionist(context.Background(), "Dr. Pro", "pro@x.com", "secret-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(auth.WithActor(req.Context(), user.Actor()))
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var profile Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if profile.ID != user.ID || profile.Email != "pro@x.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestMeHandler_NoActor(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}
