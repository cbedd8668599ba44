package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techtimeoff/leave-service/internal/domain"
)

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository returns a gorm-backed UserRepository and creates its table.
func NewGormUserRepository(db *gorm.DB) (UserRepository, error) {
	if err := db.AutoMigrate(&gormUser{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &gormUserRepository{db: db}, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := toGormUser(user)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return mapGormError(err)
	}
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	model := toGormUser(user)
	model.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&gormUser{}).
		Where("id = ?", user.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if res.Error != nil {
		return mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *gormUserRepository) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	switch provider {
	case domain.AuthProviderGoogle:
		return r.first(ctx, "google_id = ?", providerID)
	case domain.AuthProviderGitHub:
		return r.first(ctx, "github_id = ?", providerID)
	}
	return nil, fmt.Errorf("unsupported provider %q", provider)
}

func (r *gormUserRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	var models []gormUser
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return usersFromModels(models), nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []gormUser
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return usersFromModels(models), nil
}

func (r *gormUserRepository) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var model gormUser
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		return nil, mapGormError(err)
	}
	user := model.toDomain()
	return &user, nil
}

func usersFromModels(models []gormUser) []domain.User {
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out
}
