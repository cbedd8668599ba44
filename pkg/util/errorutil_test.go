package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewDuplicateEmail(), CodeDuplicateEmail, http.StatusConflict},
		{NewDuplicateIdentifier("employeeId"), CodeDuplicateIdentifier, http.StatusConflict},
		{NewInvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized},
		{NewAccountDeactivated(), CodeAccountDeactivated, http.StatusForbidden},
		{NewRoleMismatch("faculty", "principal"), CodeRoleMismatch, http.StatusForbidden},
		{NewMissingEmail("github"), CodeMissingEmail, http.StatusBadRequest},
		{NewUnauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewNotFound("Leave request", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidTransition("Approved", "Rejected"), CodeInvalidTransition, http.StatusConflict},
		{NewConflict("busy", nil), CodeConflict, http.StatusConflict},
		{NewInternalError(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			de := ToDomainError(tc.err)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "This account is registered as faculty, not principal",
		NewRoleMismatch("faculty", "principal").Error())
	assert.Equal(t, "Leave request not found", NewNotFound("Leave request", nil).Error())
}

func TestIsComparesCodes(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", NewDuplicateEmail())
	assert.True(t, errors.Is(wrapped, NewDuplicateEmail()))
	assert.False(t, errors.Is(wrapped, NewInvalidCredentials()))
}

func TestToDomainErrorConversions(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.Nil(t, MapError(nil))

	de := ToDomainError(fiber.NewError(http.StatusNotFound, "Cannot GET /nope"))
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	de = ToDomainError(fiber.ErrUnprocessableEntity)
	assert.Equal(t, CodeValidation, de.Code)

	assert.Equal(t, CodeNotFound, ToDomainError(sql.ErrNoRows).Code)

	raw := errors.New("disk full")
	de = ToDomainError(raw)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, raw)
}
