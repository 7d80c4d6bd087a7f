package validation

import (
	"strings"
	"testing"

	"github.com/nutrio/nutrio/pkg/apperrors"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&loginForm{Email: "pro@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&loginForm{Email: "not-an-email", Password: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.IsCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("expected validation_failed, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "email") || !strings.Contains(msg, "password") {
		t.Errorf("expected json field names in message, got %q", msg)
	}
}
