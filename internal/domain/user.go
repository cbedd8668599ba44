package domain

import "time"

// AuthProvider records how an account was first established.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
)

// Valid reports whether p is a known provider tag.
func (p AuthProvider) Valid() bool {
	switch p {
	case AuthProviderLocal, AuthProviderGoogle, AuthProviderGitHub:
		return true
	}
	return false
}

// LeaveBalance holds the per-category quotas stored on a user.
// The counters are informational and are not reconciled against approvals.
type LeaveBalance struct {
	Casual    float64
	Earned    float64
	Marriage  float64
	Sick      float64
	Maternity float64
	Paternity float64
}

// DefaultLeaveBalance returns the starting quotas for a new account.
func DefaultLeaveBalance() LeaveBalance {
	return LeaveBalance{
		Casual:    10,
		Earned:    15,
		Marriage:  5,
		Sick:      6,
		Maternity: 0,
		Paternity: 0,
	}
}

// User is a person with exactly one role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	Role         Role
	Department   *string
	EmployeeID   *string
	PhoneNumber  *string
	ProfileImage *string
	GoogleID     *string
	GitHubID     *string
	AuthProvider AuthProvider
	LeaveBalance LeaveBalance
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalPassword reports whether the account can authenticate with a password.
func (u *User) HasLocalPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// ProviderID returns the linked external identifier for provider, if any.
func (u *User) ProviderID(provider AuthProvider) *string {
	switch provider {
	case AuthProviderGoogle:
		return u.GoogleID
	case AuthProviderGitHub:
		return u.GitHubID
	}
	return nil
}

// SetProviderID links an external identifier for provider.
func (u *User) SetProviderID(provider AuthProvider, id string) {
	switch provider {
	case AuthProviderGoogle:
		u.GoogleID = &id
	case AuthProviderGitHub:
		u.GitHubID = &id
	}
}
