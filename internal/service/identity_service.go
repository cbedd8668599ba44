package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/repository"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether a normalized address is acceptable.
func ValidEmail(email string) bool {
	return apperrors.ValidVar(email, "required,email")
}

// IdentityService owns user records: registration, credential checks,
// federated account linking and profile maintenance.
type IdentityService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// IdentityDependencies bundles what the identity service needs.
type IdentityDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		users:      deps.UserRepo,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// RegisterInput describes a local sign-up.
type RegisterInput struct {
	Name        string      `validate:"notblank"`
	Email       string      `validate:"required,email"`
	Password    string      `validate:"password"`
	Role        domain.Role `validate:"role"`
	Department  *string
	EmployeeID  *string
	PhoneNumber *string
}

// ProfileUpdate lists the only fields a profile edit may touch. Nil leaves a
// field unchanged; an empty string clears an optional field.
type ProfileUpdate struct {
	Name         *string
	Department   *string
	EmployeeID   *string
	PhoneNumber  *string
	ProfileImage *string
}

// OAuthIdentity is the provider-asserted identity handed over after a callback.
type OAuthIdentity struct {
	Provider    domain.AuthProvider
	ProviderID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Register creates a local account with a hashed password and default balances.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := apperrors.ValidateStruct(in); err != nil {
		return nil, err
	}
	name, email := in.Name, in.Email

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		Role:         in.Role,
		Department:   optional(in.Department),
		EmployeeID:   optional(in.EmployeeID),
		PhoneNumber:  optional(in.PhoneNumber),
		AuthProvider: domain.AuthProviderLocal,
		LeaveBalance: domain.DefaultLeaveBalance(),
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// VerifyCredentials checks an email/password pair. A deactivated account is
// reported before the password is examined.
func (s *IdentityService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !user.Active {
		return nil, apperrors.NewAccountDeactivated()
	}
	if !user.HasLocalPassword() {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(*user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return user, nil
}

// FindOrCreateFromOAuth resolves a federated identity to a local account,
// matching on email first and provider id second. Missing provider ids are
// backfilled; unknown identities get a new faculty account with no password.
func (s *IdentityService) FindOrCreateFromOAuth(ctx context.Context, in OAuthIdentity) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !ValidEmail(email) {
		return nil, apperrors.NewMissingEmail(string(in.Provider))
	}
	if !in.Provider.Valid() || in.Provider == domain.AuthProviderLocal || in.ProviderID == "" {
		return nil, apperrors.NewValidationError("invalid external identity", map[string]any{"provider": in.Provider})
	}

	user, err := s.lookupFederated(ctx, in.Provider, in.ProviderID, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	if user != nil {
		return s.linkProvider(ctx, user, in)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	user = &domain.User{
		Name:         name,
		Email:        email,
		Role:         domain.RoleFaculty,
		ProfileImage: optional(&in.AvatarURL),
		AuthProvider: in.Provider,
		LeaveBalance: domain.DefaultLeaveBalance(),
		Active:       true,
	}
	user.SetProviderID(in.Provider, in.ProviderID)

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent callback for the same person may have created the row first.
		if errors.Is(err, repository.ErrDuplicateEmail) || errors.Is(err, repository.ErrDuplicateProviderID) {
			existing, lookupErr := s.lookupFederated(ctx, in.Provider, in.ProviderID, email)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, mapRepoError(err, "user")
	}
	s.logger.Info("user created from external identity",
		zap.String("user_id", user.ID), zap.String("provider", string(in.Provider)))
	return user, nil
}

func (s *IdentityService) lookupFederated(ctx context.Context, provider domain.AuthProvider, providerID, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.users.GetByProviderID(ctx, provider, providerID)
}

func (s *IdentityService) linkProvider(ctx context.Context, user *domain.User, in OAuthIdentity) (*domain.User, error) {
	changed := false
	if id := user.ProviderID(in.Provider); id == nil || *id == "" {
		user.SetProviderID(in.Provider, in.ProviderID)
		changed = true
	}
	if user.ProfileImage == nil && in.AvatarURL != "" {
		avatar := in.AvatarURL
		user.ProfileImage = &avatar
		changed = true
	}
	if !changed {
		return user, nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// Get returns one user.
func (s *IdentityService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// List returns every user, newest first.
func (s *IdentityService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// UpdateProfile applies whitelisted profile fields.
func (s *IdentityService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("validation failed", map[string]any{"name": "Name is required"})
		}
		user.Name = name
	}
	if in.Department != nil {
		user.Department = optional(in.Department)
	}
	if in.EmployeeID != nil {
		user.EmployeeID = optional(in.EmployeeID)
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = optional(in.PhoneNumber)
	}
	if in.ProfileImage != nil {
		user.ProfileImage = optional(in.ProfileImage)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// ChangePassword sets a new local password. Accounts that already have one
// must present it; accounts created through a provider may set their first
// password without it.
func (s *IdentityService) ChangePassword(ctx context.Context, id, current, next string) error {
	if err := checkPassword("newPassword", next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "user")
	}
	if user.HasLocalPassword() {
		if err := auth.ComparePassword(*user.PasswordHash, current); err != nil {
			return apperrors.NewValidationError("current password is incorrect",
				map[string]any{"currentPassword": "Current password is incorrect"})
		}
	}

	return s.setPassword(ctx, user, next)
}

// ResetPassword replaces the password of the account registered under email
// without asking for the current one. It backs the operator CLI.
func (s *IdentityService) ResetPassword(ctx context.Context, email, next string) (*domain.User, error) {
	if err := checkPassword("newPassword", next); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	if err := s.setPassword(ctx, user, next); err != nil {
		return nil, err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return user, nil
}

func (s *IdentityService) setPassword(ctx context.Context, user *domain.User, next string) error {
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = &hash
	if err := s.users.Update(ctx, user); err != nil {
		return mapRepoError(err, "user")
	}
	return nil
}

// Deactivate disables sign-in for a user without deleting any data.
func (s *IdentityService) Deactivate(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	if !user.Active {
		return user, nil
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	s.logger.Info("user deactivated", zap.String("user_id", id))
	return user, nil
}

// optional trims v and returns nil when nothing is left.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
