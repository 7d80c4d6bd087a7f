package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidState, http.StatusBadRequest},
		{CodeExpired, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got := New(tt.code, "x").HTTPStatus()
		if got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(inner, CodeInternal, "wrapped")
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("patient not found"))
	if !IsCode(err, CodeNotFound) {
		t.Error("expected IsCode to match through wrapping")
	}
	if IsCode(err, CodeForbidden) {
		t.Error("unexpected code match")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("plain error should not match")
	}
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := HTTPErrorHandler(zerolog.Nop())
	h(Forbidden("Forbidden"), c)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	var body ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Detail != "Forbidden" {
		t.Errorf("expected detail 'Forbidden', got %q", body.Detail)
	}
}

func TestHTTPErrorHandler_InternalHidesDetail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := HTTPErrorHandler(zerolog.Nop())
	h(Internal(errors.New("pq: connection refused")), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	var body ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Detail != "internal server error" {
		t.Errorf("internal detail leaked: %q", body.Detail)
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := HTTPErrorHandler(zerolog.Nop())
	h(echo.NewHTTPError(http.StatusNotFound, "no such route"), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
