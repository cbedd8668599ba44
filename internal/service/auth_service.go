package service

import (
	"context"
	"time"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/domain"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// Session is a freshly issued token together with the account it names.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type loginInput struct {
	Email    string      `validate:"required,email"`
	Password string      `validate:"required"`
	Role     domain.Role `validate:"role"`
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	identity *IdentityService
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(identity *IdentityService, tokens *auth.TokenManager) *AuthService {
	return &AuthService{identity: identity, tokenMgr: tokens}
}

// Register creates a local account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := s.identity.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login authenticates with email and password, then confirms the account
// holds the role the client asked to sign in as.
func (s *AuthService) Login(ctx context.Context, email, password string, role domain.Role) (*Session, error) {
	if err := apperrors.ValidateStruct(loginInput{Email: NormalizeEmail(email), Password: password, Role: role}); err != nil {
		return nil, err
	}

	user, err := s.identity.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, apperrors.NewRoleMismatch(string(user.Role), string(role))
	}
	return s.issue(user)
}

// Me returns the account named by a verified token.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.identity.Get(ctx, userID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
