package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nutrio/nutrio/pkg/apperrors"
)

// ActorSource loads the live actor for a verified token subject. Implemented
// by the identity service; returning a nil actor means the account no longer
// exists and the token is treated as invalid.
type ActorSource interface {
	ActorByID(ctx context.Context, id uuid.UUID) (*Actor, error)
}

// Bearer returns middleware that authenticates requests via a bearer token.
// The token is verified, the referenced user is loaded, and the resulting
// actor is stored on the request context for the ACL predicates downstream.
func Bearer(tokens *TokenService, source ActorSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return apperrors.Unauthenticated("Access token required")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperrors.Unauthenticated("Access token required")
			}

			userID, _, err := tokens.Verify(parts[1])
			if err != nil {
				return err
			}

			actor, err := source.ActorByID(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if actor == nil {
				return apperrors.Unauthenticated("Invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	}
}

// RequireRole returns middleware that rejects actors whose role is not in
// the allowed set. It assumes Bearer has already run; a missing actor is an
// authentication failure, not an authorization one.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c.Request().Context())
			if actor == nil {
				return apperrors.Unauthenticated("Authentication required")
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}
			return apperrors.Forbidden("Insufficient permissions")
		}
	}
}
