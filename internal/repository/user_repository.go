package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, department, employee_id, phone_number,
               profile_image, google_id, github_id, auth_provider,
               balance_casual, balance_earned, balance_marriage, balance_sick, balance_maternity, balance_paternity,
               is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, department, employee_id, phone_number,
            profile_image, google_id, github_id, auth_provider,
            balance_casual, balance_earned, balance_marriage, balance_sick, balance_maternity, balance_paternity,
            is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Department,
		user.EmployeeID,
		user.PhoneNumber,
		user.ProfileImage,
		user.GoogleID,
		user.GitHubID,
		user.AuthProvider,
		user.LeaveBalance.Casual,
		user.LeaveBalance.Earned,
		user.LeaveBalance.Marriage,
		user.LeaveBalance.Sick,
		user.LeaveBalance.Maternity,
		user.LeaveBalance.Paternity,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if !validID(user.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, role=$4, department=$5, employee_id=$6,
            phone_number=$7, profile_image=$8, google_id=$9, github_id=$10, auth_provider=$11,
            balance_casual=$12, balance_earned=$13, balance_marriage=$14, balance_sick=$15,
            balance_maternity=$16, balance_paternity=$17, is_active=$18, updated_at=NOW()
        WHERE id=$19
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Department,
		user.EmployeeID,
		user.PhoneNumber,
		user.ProfileImage,
		user.GoogleID,
		user.GitHubID,
		user.AuthProvider,
		user.LeaveBalance.Casual,
		user.LeaveBalance.Earned,
		user.LeaveBalance.Marriage,
		user.LeaveBalance.Sick,
		user.LeaveBalance.Maternity,
		user.LeaveBalance.Paternity,
		user.Active,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	var column string
	switch provider {
	case domain.AuthProviderGoogle:
		column = "google_id"
	case domain.AuthProviderGitHub:
		column = "github_id"
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+`=$1`, providerID)
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.EmployeeID,
		&user.PhoneNumber,
		&user.ProfileImage,
		&user.GoogleID,
		&user.GitHubID,
		&user.AuthProvider,
		&user.LeaveBalance.Casual,
		&user.LeaveBalance.Earned,
		&user.LeaveBalance.Marriage,
		&user.LeaveBalance.Sick,
		&user.LeaveBalance.Maternity,
		&user.LeaveBalance.Paternity,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	result := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}
