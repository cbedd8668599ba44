package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// LeaveFilter narrows leave listings.
type LeaveFilter struct {
	UserID   *string
	Statuses []domain.LeaveStatus
}

// LeaveRepository encapsulates leave request persistence.
type LeaveRepository interface {
	Create(ctx context.Context, leave *domain.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveRequest, error)
	// UpdatePending rewrites the editable fields of a request still in Pending.
	UpdatePending(ctx context.Context, leave *domain.LeaveRequest) error
	// Transition applies decision only if the stored status is one of from.
	// It returns ErrNotFound for an unknown id and ErrStatusConflict when the
	// stored status did not match.
	Transition(ctx context.Context, id string, from []domain.LeaveStatus, decision domain.LeaveDecision) (*domain.LeaveRequest, error)
}

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository instantiates the Postgres repository.
func NewLeaveRepository(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepository{pool: pool}
}

const leaveColumns = `id, user_id, leave_type, start_date, end_date, number_of_days, reason, status,
               approved_by, approver_name, action_date, rejection_reason, attachment, created_at, updated_at`

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	const query = `
        INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, number_of_days, reason, status, attachment)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		leave.UserID,
		leave.LeaveType,
		leave.StartDate,
		leave.EndDate,
		leave.NumberOfDays,
		leave.Reason,
		leave.Status,
		leave.Attachment,
	).Scan(&leave.ID, &leave.CreatedAt, &leave.UpdatedAt)
	return mapPgError(err)
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	leave, err := scanLeave(r.pool.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return leave, nil
}

func (r *leaveRepository) List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		if !validID(*filter.UserID) {
			return []domain.LeaveRequest{}, nil
		}
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.LeaveRequest{}
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *leave)
	}
	return result, rows.Err()
}

func (r *leaveRepository) UpdatePending(ctx context.Context, leave *domain.LeaveRequest) error {
	if !validID(leave.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE leave_requests SET leave_type=$1, start_date=$2, end_date=$3, number_of_days=$4, reason=$5,
            attachment=$6, updated_at=NOW()
        WHERE id=$7 AND status=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		leave.LeaveType,
		leave.StartDate,
		leave.EndDate,
		leave.NumberOfDays,
		leave.Reason,
		leave.Attachment,
		leave.ID,
		domain.LeaveStatusPending,
	).Scan(&leave.UpdatedAt)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missOrConflict(ctx, leave.ID)
	}
	return err
}

func (r *leaveRepository) Transition(ctx context.Context, id string, from []domain.LeaveStatus, decision domain.LeaveDecision) (*domain.LeaveRequest, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
        UPDATE leave_requests SET status=$2, approved_by=$3, approver_name=$4, action_date=$5,
            rejection_reason=$6, updated_at=NOW()
        WHERE id=$1 AND status = ANY($7)
        RETURNING ` + leaveColumns
	leave, err := scanLeave(r.pool.QueryRow(ctx, query,
		id,
		decision.Status,
		decision.ApprovedBy,
		decision.ApproverName,
		decision.ActionDate,
		decision.RejectionReason,
		statusStrings(from),
	))
	if err == nil {
		return leave, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missOrConflict(ctx, id)
	}
	return nil, err
}

// missOrConflict distinguishes an absent row from a status mismatch after a conditional write.
func (r *leaveRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leave_requests WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func scanLeave(row pgx.Row) (*domain.LeaveRequest, error) {
	var leave domain.LeaveRequest
	if err := row.Scan(
		&leave.ID,
		&leave.UserID,
		&leave.LeaveType,
		&leave.StartDate,
		&leave.EndDate,
		&leave.NumberOfDays,
		&leave.Reason,
		&leave.Status,
		&leave.ApprovedBy,
		&leave.ApproverName,
		&leave.ActionDate,
		&leave.RejectionReason,
		&leave.Attachment,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &leave, nil
}

func statusStrings(statuses []domain.LeaveStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
