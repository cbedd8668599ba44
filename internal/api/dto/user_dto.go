package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// RegisterRequest payload for new local accounts.
type RegisterRequest struct {
	Name        string      `json:"name" validate:"notblank"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=6,maxbytes=72"`
	Role        domain.Role `json:"role" validate:"oneof=faculty coordinator chief_coordinator principal"`
	Department  *string     `json:"department"`
	EmployeeID  *string     `json:"employeeId"`
	PhoneNumber *string     `json:"phoneNumber"`
}

// LoginRequest payload for login. Role is the portal the user is signing in to.
type LoginRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     domain.Role `json:"role" validate:"oneof=faculty coordinator chief_coordinator principal"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest lists the only keys a profile update accepts.
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	Department   *string `json:"department"`
	EmployeeID   *string `json:"employeeId"`
	PhoneNumber  *string `json:"phoneNumber"`
	ProfileImage *string `json:"profileImage"`
}

// DecodeUpdateProfile parses body strictly: any key outside the whitelist is an error.
func DecodeUpdateProfile(body []byte) (UpdateProfileRequest, error) {
	var req UpdateProfileRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, errors.New("request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return req, fmt.Errorf("field %s cannot be updated", field)
		}
		return req, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return req, errors.New("unexpected data after JSON object")
	}
	return req, nil
}

// LeaveBalanceResponse mirrors domain.LeaveBalance.
type LeaveBalanceResponse struct {
	Casual    float64 `json:"casual"`
	Earned    float64 `json:"earned"`
	Marriage  float64 `json:"marriage"`
	Sick      float64 `json:"sick"`
	Maternity float64 `json:"maternity"`
	Paternity float64 `json:"paternity"`
}

// UserResponse is the public view of an account. It never carries the password hash.
type UserResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Role         domain.Role          `json:"role"`
	Department   *string              `json:"department"`
	EmployeeID   *string              `json:"employeeId"`
	PhoneNumber  *string              `json:"phoneNumber"`
	ProfileImage *string              `json:"profileImage"`
	AuthProvider domain.AuthProvider  `json:"authProvider"`
	HasPassword  bool                 `json:"hasPassword"`
	LeaveBalance LeaveBalanceResponse `json:"leaveBalance"`
	IsActive     bool                 `json:"isActive"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Department:   u.Department,
		EmployeeID:   u.EmployeeID,
		PhoneNumber:  u.PhoneNumber,
		ProfileImage: u.ProfileImage,
		AuthProvider: u.AuthProvider,
		HasPassword:  u.HasLocalPassword(),
		LeaveBalance: LeaveBalanceResponse{
			Casual:    u.LeaveBalance.Casual,
			Earned:    u.LeaveBalance.Earned,
			Marriage:  u.LeaveBalance.Marriage,
			Sick:      u.LeaveBalance.Sick,
			Maternity: u.LeaveBalance.Maternity,
			Paternity: u.LeaveBalance.Paternity,
		},
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
