// AuthService sits between the auth handler and the users collection:
//
//	AuthHandler (HTTP) → AuthService → auth.Client (provider HTTP calls)
//	                                 ↘ UserRepository (DB)
//
// The handler owns everything HTTP (redirects, cookies); AuthService owns the
// order of the steps and the policy for a failed write.

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

// Authenticator turns an authorization code into a normalized identity.
// *auth.Client is the production implementation.
type Authenticator interface {
	AuthURL(p *auth.Provider, state string) string
	Authenticate(ctx context.Context, p *auth.Provider, code string) (*model.User, error)
}

// AuthService handles the OAuth callback.
type AuthService struct {
	users  repository.UserRepository
	oauth  Authenticator
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, oauth Authenticator, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		oauth:  oauth,
		logger: logger,
	}
}

// AuthURL is where the browser is sent to start a login with p.
func (s *AuthService) AuthURL(p *auth.Provider, state string) string {
	return s.oauth.AuthURL(p, state)
}

// Login runs the callback steps in order:
//
//  1. exchange the code and fetch the profile (auth.Client)
//  2. upsert the identity into users, keyed by (provider, userId)
//
// A failure in step 1 is returned as-is so the handler can map its
// auth.FailureCode. A failure in step 2 is logged at WARN and swallowed for
// every provider: the visitor still signs in, the users record just lags
// behind until the next successful login.
func (s *AuthService) Login(ctx context.Context, p *auth.Provider, code string) (*model.User, error) {
	if p == nil {
		return nil, fmt.Errorf("service/auth: provider must not be nil")
	}

	user, err := s.oauth.Authenticate(ctx, p, code)
	if err != nil {
		return nil, err
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Warn("failed to persist user, continuing login",
			slog.String("provider", user.Provider),
			slog.String("userId", user.UserID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("user authenticated",
		slog.String("provider", user.Provider),
		slog.String("userId", user.UserID),
	)
	return user, nil
}
