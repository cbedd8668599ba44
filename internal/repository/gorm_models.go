package repository

import (
	"time"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// Row models for the embedded store. Each maps to the same table name the
// Postgres migrations create so both drivers share one schema vocabulary.

type gormUser struct {
	ID               string  `gorm:"primaryKey;size:36"`
	Name             string  `gorm:"not null"`
	Email            string  `gorm:"uniqueIndex:idx_users_email;not null"`
	PasswordHash     *string
	Role             string  `gorm:"not null;index"`
	Department       *string
	EmployeeID       *string `gorm:"uniqueIndex:idx_users_employee_id"`
	PhoneNumber      *string
	ProfileImage     *string
	GoogleID         *string `gorm:"uniqueIndex:idx_users_google_id"`
	GitHubID         *string `gorm:"column:github_id;uniqueIndex:idx_users_github_id"`
	AuthProvider     string  `gorm:"not null"`
	BalanceCasual    float64
	BalanceEarned    float64
	BalanceMarriage  float64
	BalanceSick      float64
	BalanceMaternity float64
	BalancePaternity float64
	IsActive         bool `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (gormUser) TableName() string { return "users" }

func toGormUser(u *domain.User) gormUser {
	return gormUser{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		Department:       u.Department,
		EmployeeID:       u.EmployeeID,
		PhoneNumber:      u.PhoneNumber,
		ProfileImage:     u.ProfileImage,
		GoogleID:         u.GoogleID,
		GitHubID:         u.GitHubID,
		AuthProvider:     string(u.AuthProvider),
		BalanceCasual:    u.LeaveBalance.Casual,
		BalanceEarned:    u.LeaveBalance.Earned,
		BalanceMarriage:  u.LeaveBalance.Marriage,
		BalanceSick:      u.LeaveBalance.Sick,
		BalanceMaternity: u.LeaveBalance.Maternity,
		BalancePaternity: u.LeaveBalance.Paternity,
		IsActive:         u.Active,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (m gormUser) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Department:   m.Department,
		EmployeeID:   m.EmployeeID,
		PhoneNumber:  m.PhoneNumber,
		ProfileImage: m.ProfileImage,
		GoogleID:     m.GoogleID,
		GitHubID:     m.GitHubID,
		AuthProvider: domain.AuthProvider(m.AuthProvider),
		LeaveBalance: domain.LeaveBalance{
			Casual:    m.BalanceCasual,
			Earned:    m.BalanceEarned,
			Marriage:  m.BalanceMarriage,
			Sick:      m.BalanceSick,
			Maternity: m.BalanceMaternity,
			Paternity: m.BalancePaternity,
		},
		Active:    m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type gormLeave struct {
	ID              string    `gorm:"primaryKey;size:36"`
	UserID          string    `gorm:"size:36;not null;index"`
	LeaveType       string    `gorm:"not null"`
	StartDate       time.Time `gorm:"not null"`
	EndDate         time.Time `gorm:"not null"`
	NumberOfDays    float64   `gorm:"not null"`
	Reason          string    `gorm:"not null"`
	Status          string    `gorm:"not null;index"`
	ApprovedBy      *string   `gorm:"size:36"`
	ApproverName    *string
	ActionDate      *time.Time
	RejectionReason *string
	Attachment      *string
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (gormLeave) TableName() string { return "leave_requests" }

func toGormLeave(l *domain.LeaveRequest) gormLeave {
	return gormLeave{
		ID:              l.ID,
		UserID:          l.UserID,
		LeaveType:       string(l.LeaveType),
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		NumberOfDays:    l.NumberOfDays,
		Reason:          l.Reason,
		Status:          string(l.Status),
		ApprovedBy:      l.ApprovedBy,
		ApproverName:    l.ApproverName,
		ActionDate:      l.ActionDate,
		RejectionReason: l.RejectionReason,
		Attachment:      l.Attachment,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func (m gormLeave) toDomain() domain.LeaveRequest {
	return domain.LeaveRequest{
		ID:              m.ID,
		UserID:          m.UserID,
		LeaveType:       domain.LeaveType(m.LeaveType),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		NumberOfDays:    m.NumberOfDays,
		Reason:          m.Reason,
		Status:          domain.LeaveStatus(m.Status),
		ApprovedBy:      m.ApprovedBy,
		ApproverName:    m.ApproverName,
		ActionDate:      m.ActionDate,
		RejectionReason: m.RejectionReason,
		Attachment:      m.Attachment,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type gormLeaveHistory struct {
	ID         string  `gorm:"primaryKey;size:36"`
	LeaveID    string  `gorm:"size:36;not null;index"`
	ActorID    string  `gorm:"size:36;not null"`
	FromStatus *string
	ToStatus   string `gorm:"not null"`
	Comment    string
	CreatedAt  time.Time
}

func (gormLeaveHistory) TableName() string { return "leave_history" }
