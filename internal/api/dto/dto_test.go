package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

func TestDecodeUpdateProfileWhitelist(t *testing.T) {
	req, err := DecodeUpdateProfile([]byte(`{"name":"Ana","department":"Physics"}`))
	require.NoError(t, err)
	require.NotNil(t, req.Name)
	assert.Equal(t, "Ana", *req.Name)
	assert.Nil(t, req.PhoneNumber)

	_, err = DecodeUpdateProfile([]byte(`{"name":"Ana","role":"principal"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"role"`)

	_, err = DecodeUpdateProfile([]byte(`{"password":"x"}`))
	assert.Error(t, err)

	_, err = DecodeUpdateProfile([]byte(``))
	assert.Error(t, err)

	_, err = DecodeUpdateProfile([]byte(`{"name":"a"} {"role":"x"}`))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-06-03T10:00:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)

	// The calendar day is read in the value's own zone.
	d, err = ParseDate("2024-03-10T23:00:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("03/06/2024")
	assert.Error(t, err)
}

func TestLeaveRequestBodyDatesNamesField(t *testing.T) {
	_, _, field, err := LeaveRequestBody{StartDate: "2024-06-03", EndDate: "soon"}.Dates()
	require.Error(t, err)
	assert.Equal(t, "endDate", field)
}

func TestDecodeUpdateProfileAcceptsEmployeeID(t *testing.T) {
	req, err := DecodeUpdateProfile([]byte(`{"employeeId":"FAC-9"}`))
	require.NoError(t, err)
	require.NotNil(t, req.EmployeeID)
	assert.Equal(t, "FAC-9", *req.EmployeeID)
}

func validationDetails(t *testing.T, v any) map[string]any {
	t.Helper()
	err := apperrors.ValidateStruct(v)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, de.Code)
	return de.Details
}

func TestLeaveRequestBodyValidation(t *testing.T) {
	good := LeaveRequestBody{
		LeaveType:    "Sick Leave",
		StartDate:    "2024-03-10T23:00:00-05:00",
		EndDate:      "2024-03-10",
		NumberOfDays: 1,
		Reason:       "flu",
	}
	assert.NoError(t, apperrors.ValidateStruct(good))

	details := validationDetails(t, LeaveRequestBody{
		LeaveType:    "Vacation",
		StartDate:    "2024-03-12",
		EndDate:      "2024-03-10",
		NumberOfDays: 0,
		Reason:       "   ",
	})
	assert.Equal(t, "Invalid leaveType", details["leaveType"])
	assert.Equal(t, "endDate must not be before startDate", details["endDate"])
	assert.Contains(t, details, "numberOfDays")
	assert.Equal(t, "reason is required", details["reason"])

	details = validationDetails(t, LeaveRequestBody{
		LeaveType: "Casual Leave", StartDate: "next week", EndDate: "2024-03-10", NumberOfDays: 1, Reason: "x",
	})
	assert.Equal(t, "Invalid date", details["startDate"])
	assert.NotContains(t, details, "endDate")
}

func TestRegisterRequestValidation(t *testing.T) {
	ok := RegisterRequest{Name: "Ana", Email: "ana@college.edu", Password: "secret1", Role: "faculty"}
	assert.NoError(t, apperrors.ValidateStruct(ok))

	tooLong := ok
	tooLong.Password = strings.Repeat("x", 73)
	details := validationDetails(t, tooLong)
	assert.Equal(t, "password must be at most 72 bytes", details["password"])

	bad := RegisterRequest{Name: "", Email: "ana", Password: "123", Role: "dean"}
	details = validationDetails(t, bad)
	assert.Contains(t, details, "name")
	assert.Equal(t, "Valid email is required", details["email"])
	assert.Equal(t, "password must be at least 6 characters", details["password"])
	assert.Equal(t, "Invalid role", details["role"])
}

func TestLoginRequestValidation(t *testing.T) {
	details := validationDetails(t, LoginRequest{Email: "ana@college.edu", Role: "principal"})
	assert.Equal(t, "password is required", details["password"])
	assert.NotContains(t, details, "role")
}
