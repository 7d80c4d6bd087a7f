package invite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nutrio/nutrio/internal/domain/identity"
	"github.com/nutrio/nutrio/internal/domain/patient"
	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/internal/platform/mail"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

// PatientCreator and UserDirectory are the slices of the roster and
// identity stores acceptance needs; the concrete repositories satisfy them.
type PatientCreator interface {
	Create(ctx context.Context, p *patient.Patient) error
}

type UserDirectory interface {
	Create(ctx context.Context, u *identity.User) error
	GetByEmail(ctx context.Context, email string) (*identity.User, error)
}

// TxRunner executes fn atomically; repositories called inside fn share the
// transaction through the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo       Repository
	patients   PatientCreator
	users      UserDirectory
	mailer     mail.InviteMailer
	runTx      TxRunner
	defaultTTL time.Duration
	log        zerolog.Logger
}

func NewService(repo Repository, patients PatientCreator, users UserDirectory,
	mailer mail.InviteMailer, runTx TxRunner, defaultTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		users:      users,
		mailer:     mailer,
		runTx:      runTx,
		defaultTTL: defaultTTL,
		log:        log,
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create issues a new invite. The address must not already belong to a
// registered user. The invite email is sent best-effort: a delivery failure
// is logged, not surfaced, since the token is also returned to the issuer.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req CreateRequest) (*Invite, error) {
	email := identity.NormalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil {
		return nil, apperrors.InvalidState("User with this email already exists")
	}

	token, err := newToken()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	ttl := s.defaultTTL
	if req.ExpiresInHours != nil {
		ttl = time.Duration(*req.ExpiresInHours) * time.Hour
	}
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}

	inv := &Invite{
		ID:             uuid.New(),
		NutritionistID: actor.ID,
		Token:          token,
		Email:          email,
		Status:         StatusActive,
		ExpiresAt:      expiresAt,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.mailer.SendInvite(email, token); err != nil {
		s.log.Warn().Err(err).Str("invite_id", inv.ID.String()).Msg("invite email delivery failed")
	}
	return inv, nil
}

// Get resolves an invite by its public token. An active invite past its
// deadline is reported as expired without touching the stored record; the
// persisted transition happens on the accept path.
func (s *Service) Get(ctx context.Context, token string) (*View, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("Invite not found")
	}
	v := inv.View(time.Now().UTC())
	return &v, nil
}

// List returns the acting nutritionist's invites, newest first, with the
// expiry projection applied.
func (s *Service) List(ctx context.Context, actor *auth.Actor, limit, offset int) ([]View, int, error) {
	invites, total, err := s.repo.List(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := time.Now().UTC()
	views := make([]View, len(invites))
	for i, inv := range invites {
		views[i] = inv.View(now)
	}
	return views, total, nil
}

// Revoke withdraws an active invite. Only the issuer may revoke, and only
// while the invite is still active.
func (s *Service) Revoke(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Invite, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("Invite not found")
	}
	if inv.NutritionistID != actor.ID {
		return nil, apperrors.Forbidden("Not allowed to revoke this invite")
	}

	ok, err := s.repo.Transition(ctx, inv.ID, StatusActive, StatusRevoked)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidState("Invite is not active")
	}
	inv.Status = StatusRevoked
	return inv, nil
}

// Accept converts an active invite into a linked patient profile and
// patient account, at most once per token. The profile creation, account
// creation and the active→used transition commit as one unit; a concurrent
// acceptor that loses the conditional status write gets InvalidState and
// leaves nothing behind.
func (s *Service) Accept(ctx context.Context, token string, req AcceptRequest) (*identity.User, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if inv == nil {
		return nil, apperrors.NotFound("Invite not found")
	}
	if inv.Status != StatusActive {
		return nil, apperrors.InvalidState("Invite is not active")
	}
	if inv.Expired(time.Now().UTC()) {
		// Persist the lapse so later reads and accepts agree.
		if _, err := s.repo.Transition(ctx, inv.ID, StatusActive, StatusExpired); err != nil {
			return nil, apperrors.Internal(err)
		}
		return nil, apperrors.Expired("Invite has expired")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var user *identity.User
	txErr := s.runTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Transition(ctx, inv.ID, StatusActive, StatusUsed)
		if err != nil {
			return apperrors.Internal(err)
		}
		if !ok {
			return apperrors.InvalidState("Invite is not active")
		}

		now := time.Now().UTC()
		p := &patient.Patient{
			ID:        uuid.New(),
			OwnerID:   inv.NutritionistID,
			Name:      req.Name,
			Email:     inv.Email,
			BirthDate: req.BirthDate,
			Sex:       req.Sex,
			HeightCm:  req.HeightCm,
			WeightKg:  req.WeightKg,
			Phone:     req.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.patients.Create(ctx, p); err != nil {
			return apperrors.Internal(err)
		}

		user = &identity.User{
			ID:           uuid.New(),
			Role:         auth.RolePatient,
			Name:         req.Name,
			Email:        inv.Email,
			PasswordHash: hash,
			PatientID:    &p.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.users.Create(ctx, user)
	})
	if txErr != nil {
		var appErr *apperrors.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Internal(txErr)
	}
	return user, nil
}
