package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// LeaveHistoryRepository stores audit entries for leave transitions.
type LeaveHistoryRepository interface {
	Create(ctx context.Context, entry *domain.LeaveHistory) error
	ListByLeave(ctx context.Context, leaveID string) ([]domain.LeaveHistory, error)
}

type leaveHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveHistoryRepository builds repository.
func NewLeaveHistoryRepository(pool *pgxpool.Pool) LeaveHistoryRepository {
	return &leaveHistoryRepository{pool: pool}
}

func (r *leaveHistoryRepository) Create(ctx context.Context, entry *domain.LeaveHistory) error {
	const query = `
        INSERT INTO leave_history (leave_id, actor_id, from_status, to_status, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return mapPgError(r.pool.QueryRow(ctx, query,
		entry.LeaveID,
		entry.ActorID,
		entry.FromStatus,
		entry.ToStatus,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt))
}

func (r *leaveHistoryRepository) ListByLeave(ctx context.Context, leaveID string) ([]domain.LeaveHistory, error) {
	if !validID(leaveID) {
		return []domain.LeaveHistory{}, nil
	}
	const query = `
        SELECT id, leave_id, actor_id, from_status, to_status, comment, created_at
        FROM leave_history WHERE leave_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, leaveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.LeaveHistory{}
	for rows.Next() {
		var entry domain.LeaveHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.LeaveID,
			&entry.ActorID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
