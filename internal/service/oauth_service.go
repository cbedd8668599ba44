package service

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/oauth"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// Failure codes appended to the frontend login URL after a failed callback.
const (
	OAuthErrNoEmail            = "no_email"
	OAuthErrAccountDeactivated = "account_deactivated"
	OAuthErrTokenGeneration    = "token_generation_failed"
)

const stateBytes = 24

// OAuthFailureCode returns the provider specific generic failure code.
func OAuthFailureCode(provider domain.AuthProvider) string {
	return string(provider) + "_auth_failed"
}

// OAuthService drives the authorization-code flow and converts a provider
// identity into a session token.
type OAuthService struct {
	providers   oauth.Registry
	states      oauth.StateStore
	identity    *IdentityService
	tokenMgr    *auth.TokenManager
	frontendURL string
	logger      *zap.Logger
}

// OAuthDependencies bundles collaborators for the OAuth service.
type OAuthDependencies struct {
	Providers oauth.Registry
	States    oauth.StateStore
	Identity  *IdentityService
	Tokens    *auth.TokenManager
	Logger    *zap.Logger
}

// CallbackParams carries the query parameters of a provider redirect.
type CallbackParams struct {
	Code  string
	State string
	Error string
}

// NewOAuthService constructs the service.
func NewOAuthService(cfg config.Config, deps OAuthDependencies) *OAuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	providers := deps.Providers
	if providers == nil {
		providers = oauth.Registry{}
	}
	return &OAuthService{
		providers:   providers,
		states:      deps.States,
		identity:    deps.Identity,
		tokenMgr:    deps.Tokens,
		frontendURL: cfg.OAuth.FrontendURL,
		logger:      logger,
	}
}

// Enabled reports whether provider has credentials configured.
func (s *OAuthService) Enabled(provider domain.AuthProvider) bool {
	_, ok := s.providers.Get(provider)
	return ok
}

// Begin issues a single-use state and returns the provider authorization URL.
func (s *OAuthService) Begin(ctx context.Context, provider domain.AuthProvider) (string, error) {
	p, ok := s.providers.Get(provider)
	if !ok {
		return "", apperrors.NewNotFound("oauth provider", map[string]any{"provider": provider})
	}
	state, err := auth.RandomToken(stateBytes)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if err := s.states.Save(ctx, state, provider); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return p.AuthCodeURL(state), nil
}

// Complete finishes a callback and always returns a frontend URL: the
// success page with a token, or the login page with an error code.
func (s *OAuthService) Complete(ctx context.Context, provider domain.AuthProvider, params CallbackParams) string {
	log := s.logger.With(zap.String("provider", string(provider)))
	failed := OAuthFailureCode(provider)

	p, ok := s.providers.Get(provider)
	if !ok {
		return s.failureURL(failed)
	}
	if params.Error != "" {
		log.Warn("provider returned an error", zap.String("error", params.Error))
		return s.failureURL(failed)
	}

	issuedFor, err := s.states.Consume(ctx, params.State)
	if err != nil || issuedFor != provider {
		log.Warn("oauth state rejected", zap.Error(err))
		return s.failureURL(failed)
	}
	if params.Code == "" {
		return s.failureURL(failed)
	}

	profile, err := p.Exchange(ctx, params.Code)
	if err != nil {
		log.Warn("oauth exchange failed", zap.Error(err))
		return s.failureURL(failed)
	}

	user, err := s.identity.FindOrCreateFromOAuth(ctx, OAuthIdentity{
		Provider:    provider,
		ProviderID:  profile.ProviderID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, apperrors.NewMissingEmail(string(provider))) {
			return s.failureURL(OAuthErrNoEmail)
		}
		log.Error("linking external identity failed", zap.Error(err))
		return s.failureURL(failed)
	}
	if !user.Active {
		return s.failureURL(OAuthErrAccountDeactivated)
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Error("token generation failed", zap.Error(err))
		return s.failureURL(OAuthErrTokenGeneration)
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("provider", string(provider))
	return s.frontendURL + "/auth/callback?" + q.Encode()
}

func (s *OAuthService) failureURL(code string) string {
	q := url.Values{}
	q.Set("error", code)
	return s.frontendURL + "/login?" + q.Encode()
}
