package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techtimeoff/leave-service/internal/domain"
)

type gormLeaveHistoryRepository struct {
	db *gorm.DB
}

// NewGormLeaveHistoryRepository returns a gorm-backed LeaveHistoryRepository and creates its table.
func NewGormLeaveHistoryRepository(db *gorm.DB) (LeaveHistoryRepository, error) {
	if err := db.AutoMigrate(&gormLeaveHistory{}); err != nil {
		return nil, fmt.Errorf("migrate leave_history: %w", err)
	}
	return &gormLeaveHistoryRepository{db: db}, nil
}

func (r *gormLeaveHistoryRepository) Create(ctx context.Context, entry *domain.LeaveHistory) error {
	model := gormLeaveHistory{
		ID:       uuid.NewString(),
		LeaveID:  entry.LeaveID,
		ActorID:  entry.ActorID,
		ToStatus: string(entry.ToStatus),
		Comment:  entry.Comment,
	}
	if entry.FromStatus != nil {
		from := string(*entry.FromStatus)
		model.FromStatus = &from
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return mapGormError(err)
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

func (r *gormLeaveHistoryRepository) ListByLeave(ctx context.Context, leaveID string) ([]domain.LeaveHistory, error) {
	var models []gormLeaveHistory
	err := r.db.WithContext(ctx).
		Where("leave_id = ?", leaveID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.LeaveHistory, 0, len(models))
	for _, m := range models {
		entry := domain.LeaveHistory{
			ID:        m.ID,
			LeaveID:   m.LeaveID,
			ActorID:   m.ActorID,
			ToStatus:  domain.LeaveStatus(m.ToStatus),
			Comment:   m.Comment,
			CreatedAt: m.CreatedAt,
		}
		if m.FromStatus != nil {
			from := domain.LeaveStatus(*m.FromStatus)
			entry.FromStatus = &from
		}
		out = append(out, entry)
	}
	return out, nil
}
