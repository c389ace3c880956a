package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinema-api/internal/event"
	"cinema-api/internal/metrics"
	"cinema-api/internal/model"
	"cinema-api/internal/security"
)

// CredentialStore persists identities. The finders return
// model.ErrUnknownIdentity when no record matches and Create returns
// model.ErrDuplicateIdentity when the email is taken; backend failures wrap
// model.ErrStoreUnavailable.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.Identity, error)
	FindByID(ctx context.Context, id string) (model.Identity, error)
	Create(ctx context.Context, identity model.Identity) (model.Identity, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, digest string) bool
}

type TokenIssuer interface {
	Issue(claims security.SessionClaims, now time.Time) (security.Token, error)
	Verify(raw string, now time.Time) (model.Principal, error)
}

type AuthOptions struct {
	// UnifyLoginErrors reports an unknown email as an invalid credential so
	// login responses do not reveal which addresses are registered.
	UnifyLoginErrors bool
	Clock            func() time.Time
}

type AuthService struct {
	users   CredentialStore
	hasher  PasswordHasher
	issuer  TokenIssuer
	bus     event.Bus
	metrics *metrics.Metrics
	opts    AuthOptions

	// digest verified against when the email is unknown, so both login
	// failures cost one hash computation.
	decoyDigest string
}

func NewAuthService(users CredentialStore, hasher PasswordHasher, issuer TokenIssuer, bus event.Bus, m *metrics.Metrics, opts AuthOptions) (*AuthService, error) {
	if users == nil || hasher == nil || issuer == nil {
		return nil, errors.New("auth service requires a credential store, hasher and token issuer")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &AuthService{users: users, hasher: hasher, issuer: issuer, bus: bus, metrics: m, opts: opts}
	if opts.UnifyLoginErrors {
		decoy, err := hasher.Hash("decoy-password")
		if err != nil {
			return nil, fmt.Errorf("prepare decoy digest: %w", err)
		}
		s.decoyDigest = decoy
	}

	return s, nil
}

// Register creates a Users identity. The role is never taken from the caller.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, clientIP string) (model.AuthUser, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return model.AuthUser{}, fmt.Errorf("email and password are required: %w", model.ErrInvalidInput)
	}

	// Cheap pre-check; the store's uniqueness rule is what actually decides.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		return model.AuthUser{}, model.ErrDuplicateIdentity
	} else if !errors.Is(err, model.ErrUnknownIdentity) {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return model.AuthUser{}, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return model.AuthUser{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, model.Identity{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleUsers,
		CreatedAt:    s.opts.Clock().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateIdentity) {
			s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
			return model.AuthUser{}, model.ErrDuplicateIdentity
		}
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return model.AuthUser{}, err
	}

	s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	s.publish(event.TypeIdentityRegistered, event.AuthPayload{UserID: created.ID, Email: created.Email, Role: created.Role, IP: clientIP})

	return toAuthUser(created), nil
}

// Login verifies the credential and issues a session token. An unknown email
// yields model.ErrUnknownIdentity and a wrong password
// model.ErrInvalidCredential, unless UnifyLoginErrors is set.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, clientIP string) (model.TokenResponse, error) {
	email := model.NormalizeEmail(req.Email)

	identity, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, model.ErrUnknownIdentity) {
			s.metrics.RecordLogin(metrics.OutcomeError)
			return model.TokenResponse{}, err
		}

		s.metrics.RecordLogin(metrics.OutcomeUnknownIdentity)
		s.publish(event.TypeLoginFailed, event.AuthPayload{Email: email, IP: clientIP, Reason: metrics.OutcomeUnknownIdentity})
		if s.opts.UnifyLoginErrors {
			s.hasher.Verify(req.Password, s.decoyDigest)
			return model.TokenResponse{}, model.ErrInvalidCredential
		}
		return model.TokenResponse{}, model.ErrUnknownIdentity
	}

	if !s.hasher.Verify(req.Password, identity.PasswordHash) {
		s.metrics.RecordLogin(metrics.OutcomeInvalidCredential)
		s.publish(event.TypeLoginFailed, event.AuthPayload{UserID: identity.ID, Email: identity.Email, Role: identity.Role, IP: clientIP, Reason: metrics.OutcomeInvalidCredential})
		return model.TokenResponse{}, model.ErrInvalidCredential
	}

	token, err := s.issuer.Issue(security.SessionClaims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   identity.Role,
	}, s.opts.Clock())
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return model.TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	s.publish(event.TypeLoginSucceeded, event.AuthPayload{UserID: identity.ID, Email: identity.Email, Role: identity.Role, IP: clientIP})

	return model.TokenResponse{
		AccessToken:    token.AccessToken,
		ExpiresIn:      token.ExpiresIn,
		TokenType:      token.TokenType,
		CreationTime:   token.ValidFrom,
		ExpirationTime: token.ValidTo,
		UserID:         identity.ID,
	}, nil
}

// Authenticate resolves a bearer token to the principal it was issued for.
func (s *AuthService) Authenticate(raw string) (model.Principal, error) {
	return s.issuer.Verify(raw, s.opts.Clock())
}

// Profile loads the stored identity behind principal. The role stays the one
// carried by the token.
func (s *AuthService) Profile(ctx context.Context, principal model.Principal) (model.AuthUser, error) {
	identity, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return model.AuthUser{}, err
	}

	user := toAuthUser(identity)
	user.Role = principal.Role
	return user, nil
}

// EnsureAdmin creates an Admin identity for email unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password string) error {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required: %w", model.ErrInvalidInput)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			slog.Warn("bootstrap admin email belongs to a non-admin identity", "email", email, "role", existing.Role)
		}
		return nil
	}
	if !errors.Is(err, model.ErrUnknownIdentity) {
		return err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := s.users.Create(ctx, model.Identity{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleAdmin,
		CreatedAt:    s.opts.Clock().UTC(),
	})
	if errors.Is(err, model.ErrDuplicateIdentity) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("admin identity created", "user_id", created.ID, "email", created.Email)
	return nil
}

func (s *AuthService) publish(typ event.Type, payload event.AuthPayload) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type:      typ,
		Payload:   payload,
		Timestamp: s.opts.Clock().UTC().Format(time.RFC3339Nano),
	})
}

func toAuthUser(identity model.Identity) model.AuthUser {
	return model.AuthUser{ID: identity.ID, Name: identity.Name, Email: identity.Email, Role: identity.Role}
}
