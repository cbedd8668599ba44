package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/domain"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

var passwordMessage = fmt.Sprintf("Password must be at least %d characters and at most %d bytes",
	auth.MinPasswordLength, auth.MaxPasswordLength)

func init() {
	apperrors.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	}, "Invalid role")
	apperrors.RegisterValidation("leavetype", func(fl validator.FieldLevel) bool {
		return domain.LeaveType(fl.Field().String()).Valid()
	}, "Invalid leave type")
	apperrors.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.PasswordLengthOK(fl.Field().String())
	}, passwordMessage)
}

// checkPassword applies the password bounds to a plain argument.
func checkPassword(field, password string) error {
	return apperrors.ValidateVar(field, password, "password")
}
