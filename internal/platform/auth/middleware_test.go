package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nutrio/nutrio/pkg/apperrors"
)

type staticActorSource map[uuid.UUID]*Actor

func (s staticActorSource) ActorByID(_ context.Context, id uuid.UUID) (*Actor, error) {
	return s[id], nil
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func runBearer(t *testing.T, tokens *TokenService, source ActorSource, authHeader string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return Bearer(tokens, source)(okHandler)(c)
}

func TestBearer_MissingHeader(t *testing.T) {
	tokens := newTestTokenService(t)
	err := runBearer(t, tokens, staticActorSource{}, "")
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestBearer_MalformedHeader(t *testing.T) {
	tokens := newTestTokenService(t)
	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		err := runBearer(t, tokens, staticActorSource{}, header)
		if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
			t.Errorf("header %q: expected unauthenticated, got %v", header, err)
		}
	}
}

func TestBearer_ValidToken(t *testing.T) {
	tokens := newTestTokenService(t)
	userID := uuid.New()
	source := staticActorSource{userID: {ID: userID, Role: RoleNutritionist}}

	token, err := tokens.Issue(userID, RoleNutritionist, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Actor
	handler := func(c echo.Context) error {
		seen = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}
	if err := Bearer(tokens, source)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.ID != userID {
		t.Fatal("actor not attached to the request context")
	}
}

func TestBearer_UnknownUser(t *testing.T) {
	tokens := newTestTokenService(t)
	token, _ := tokens.Issue(uuid.New(), RolePatient, time.Hour)

	err := runBearer(t, tokens, staticActorSource{}, "Bearer "+token)
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted user, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(actor *Actor, roles ...Role) error {
		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		if actor != nil {
			req = req.WithContext(WithActor(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		return RequireRole(roles...)(okHandler)(c)
	}

	if err := run(&Actor{Role: RoleNutritionist}, RoleNutritionist); err != nil {
		t.Errorf("matching role: unexpected error %v", err)
	}
	if err := run(&Actor{Role: RolePatient}, RoleNutritionist); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("wrong role: expected forbidden, got %v", err)
	}
	if err := run(nil, RoleNutritionist); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("no actor: expected unauthenticated, got %v", err)
	}
	if err := run(&Actor{Role: RolePatient}, RoleNutritionist, RolePatient); err != nil {
		t.Errorf("multi-role allow: unexpected error %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret-pw" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret-pw") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatch for wrong password")
	}
}
