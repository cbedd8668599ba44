package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techtimeoff/leave-service/internal/domain"
)

type gormLeaveRepository struct {
	db *gorm.DB
}

// NewGormLeaveRepository returns a gorm-backed LeaveRepository and creates its table.
func NewGormLeaveRepository(db *gorm.DB) (LeaveRepository, error) {
	if err := db.AutoMigrate(&gormLeave{}); err != nil {
		return nil, fmt.Errorf("migrate leave_requests: %w", err)
	}
	return &gormLeaveRepository{db: db}, nil
}

func (r *gormLeaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	model := toGormLeave(leave)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return mapGormError(err)
	}
	leave.CreatedAt = model.CreatedAt
	leave.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *gormLeaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	var model gormLeave
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, mapGormError(err)
	}
	leave := model.toDomain()
	return &leave, nil
}

func (r *gormLeaveRepository) List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveRequest, error) {
	query := r.db.WithContext(ctx).Model(&gormLeave{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(filter.Statuses))
	}

	var models []gormLeave
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.LeaveRequest, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *gormLeaveRepository) UpdatePending(ctx context.Context, leave *domain.LeaveRequest) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&gormLeave{}).
		Where("id = ? AND status = ?", leave.ID, string(domain.LeaveStatusPending)).
		Updates(map[string]any{
			"leave_type":     string(leave.LeaveType),
			"start_date":     leave.StartDate,
			"end_date":       leave.EndDate,
			"number_of_days": leave.NumberOfDays,
			"reason":         leave.Reason,
			"attachment":     leave.Attachment,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOrConflict(ctx, leave.ID)
	}
	leave.UpdatedAt = now
	return nil
}

func (r *gormLeaveRepository) Transition(ctx context.Context, id string, from []domain.LeaveStatus, decision domain.LeaveDecision) (*domain.LeaveRequest, error) {
	res := r.db.WithContext(ctx).
		Model(&gormLeave{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(map[string]any{
			"status":           string(decision.Status),
			"approved_by":      decision.ApprovedBy,
			"approver_name":    decision.ApproverName,
			"action_date":      decision.ActionDate,
			"rejection_reason": decision.RejectionReason,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.missOrConflict(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *gormLeaveRepository) missOrConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&gormLeave{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}
