package authx

import (
	"context"
	"strings"
	"time"

	"github.com/krancour/bizdesk/sdk/meta"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Invalid email or password."

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of a registration request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a login response. Rejected credentials yield
// Success false and a Message rather than an error status.
type LoginResponse struct {
	Success   bool          `json:"success"`
	Token     string        `json:"token,omitempty"`
	User      *session.User `json:"user,omitempty"`
	Message   string        `json:"message,omitempty"`
	ExpiresIn int64         `json:"expiresIn,omitempty"`
}

// Service is the specialized interface for authentication and tenant
// membership.
type Service interface {
	// Register creates a new, active User with the employee role. New Users do
	// not belong to any tenant.
	Register(context.Context, Registration) (session.User, error)
	// Login exchanges credentials for a token.
	Login(context.Context, Credentials) (LoginResponse, error)
	// Authenticate returns the User a token was issued to. Unknown or expired
	// tokens yield *meta.ErrAuthentication.
	Authenticate(ctx context.Context, token string) (session.User, error)
	// ListTenants returns the tenants the specified User belongs to.
	ListTenants(ctx context.Context, userID string) ([]session.Tenant, error)
	// IsMember returns true if the specified User belongs to the specified
	// tenant.
	IsMember(ctx context.Context, userID string, tenantID string) (bool, error)
}

type service struct {
	store      Store
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService returns a Service backed by store. Tokens it issues expire after
// sessionTTL, or never if it is zero.
func NewService(
	store Store,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) Service {
	return &service{
		store:      store,
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *service) Register(
	ctx context.Context,
	registration Registration,
) (session.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(registration.Password),
		s.bcryptCost,
	)
	if err != nil {
		return session.User{}, errors.Wrap(err, "error hashing password")
	}
	user := userRecord{
		User: session.User{
			ID:     uuid.NewV4().String(),
			Name:   strings.TrimSpace(registration.Name),
			Email:  strings.TrimSpace(registration.Email),
			Role:   session.RoleEmployee,
			Active: true,
		},
		HashedPassword: hashedPassword,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return session.User{}, errors.Wrapf(
			err,
			"error storing new user %q",
			user.Email,
		)
	}
	s.logger.Info().Str("user", user.ID).Msg("registered user")
	return user.User, nil
}

func (s *service) Login(
	ctx context.Context,
	credentials Credentials,
) (LoginResponse, error) {
	rejected := LoginResponse{Message: invalidCredentialsMessage}
	user, err := s.store.GetUserByEmail(ctx, credentials.Email)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			return rejected, nil
		}
		return rejected, errors.Wrap(err, "error retrieving user from store")
	}
	if err := bcrypt.CompareHashAndPassword(
		user.HashedPassword,
		[]byte(credentials.Password),
	); err != nil {
		return rejected, nil
	}
	if !user.Active {
		return LoginResponse{Message: "This account has been deactivated."}, nil
	}

	sessionRecord := sessionRecord{
		Token:  uuid.NewV4().String(),
		UserID: user.ID,
	}
	if s.sessionTTL > 0 {
		sessionRecord.Expires = s.now().Add(s.sessionTTL)
	}
	if err := s.store.CreateSession(ctx, sessionRecord); err != nil {
		return rejected, errors.Wrapf(
			err,
			"error storing new session for user %q",
			user.ID,
		)
	}
	s.logger.Info().Str("user", user.ID).Msg("user logged in")
	return LoginResponse{
		Success:   true,
		Token:     sessionRecord.Token,
		User:      &user.User,
		ExpiresIn: int64(s.sessionTTL / time.Second),
	}, nil
}

func (s *service) Authenticate(
	ctx context.Context,
	token string,
) (session.User, error) {
	sessionRecord, err := s.store.GetSession(ctx, token)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			return session.User{}, &meta.ErrAuthentication{
				Reason: "Session not found. Please log in again.",
			}
		}
		return session.User{}, errors.Wrap(
			err,
			"error retrieving session from store",
		)
	}
	if !sessionRecord.Expires.IsZero() && s.now().After(sessionRecord.Expires) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			s.logger.Error().Err(err).Msg("error deleting expired session")
		}
		return session.User{}, &meta.ErrAuthentication{
			Reason: "Supplied token has expired. Please log in again.",
		}
	}
	user, err := s.store.GetUser(ctx, sessionRecord.UserID)
	if err != nil {
		// There should never be a session for a user that doesn't exist
		return session.User{}, errors.Wrapf(
			err,
			"error retrieving user %q from store",
			sessionRecord.UserID,
		)
	}
	if !user.Active {
		return session.User{}, &meta.ErrAuthentication{
			Reason: "This account has been deactivated.",
		}
	}
	return user.User, nil
}

func (s *service) ListTenants(
	ctx context.Context,
	userID string,
) ([]session.Tenant, error) {
	tenants, err := s.store.ListTenantsForUser(ctx, userID)
	return tenants, errors.Wrapf(
		err,
		"error retrieving tenants for user %q from store",
		userID,
	)
}

func (s *service) IsMember(
	ctx context.Context,
	userID string,
	tenantID string,
) (bool, error) {
	tenants, err := s.ListTenants(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, tenant := range tenants {
		if tenant.ID == tenantID {
			return true, nil
		}
	}
	return false, nil
}
