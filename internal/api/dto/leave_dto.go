package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/techtimeoff/leave-service/internal/domain"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// LeaveRequestBody is the create/update payload.
type LeaveRequestBody struct {
	LeaveType    domain.LeaveType `json:"leaveType" validate:"oneof='Casual Leave' 'Earned Leave' 'Marriage Leave' 'Sick Leave' 'Maternity Leave' 'Paternity Leave' 'Floater Leave' 'Unpaid Leave' 'Special Leave'"`
	StartDate    string           `json:"startDate" validate:"required"`
	EndDate      string           `json:"endDate" validate:"required"`
	NumberOfDays float64          `json:"numberOfDays" validate:"gt=0"`
	Reason       string           `json:"reason" validate:"notblank"`
	Attachment   *string          `json:"attachment"`
}

func init() {
	apperrors.RegisterStructValidation(validateLeaveDates, LeaveRequestBody{})
}

// validateLeaveDates reports unparsable dates and an end before the start.
func validateLeaveDates(sl validator.StructLevel) {
	body := sl.Current().Interface().(LeaveRequestBody)
	start, startErr := ParseDate(body.StartDate)
	if startErr != nil {
		sl.ReportError(body.StartDate, "startDate", "StartDate", "date", "")
	}
	end, endErr := ParseDate(body.EndDate)
	if endErr != nil {
		sl.ReportError(body.EndDate, "endDate", "EndDate", "date", "")
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		sl.ReportError(body.EndDate, "endDate", "EndDate", "gtefield", "StartDate")
	}
}

// RejectRequest payload. The reason is optional.
type RejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns
// midnight UTC of the calendar day written in the value's own zone. Empty
// input yields the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// Dates parses StartDate and EndDate, naming the failing field.
func (b LeaveRequestBody) Dates() (start, end time.Time, field string, err error) {
	if start, err = ParseDate(b.StartDate); err != nil {
		return start, end, "startDate", err
	}
	if end, err = ParseDate(b.EndDate); err != nil {
		return start, end, "endDate", err
	}
	return start, end, "", nil
}

// UserSummaryResponse is the identity shown next to a leave request.
type UserSummaryResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
}

// LeaveResponse is the public view of a leave request.
type LeaveResponse struct {
	ID              string               `json:"id"`
	User            *UserSummaryResponse `json:"user"`
	LeaveType       domain.LeaveType     `json:"leaveType"`
	StartDate       time.Time            `json:"startDate"`
	EndDate         time.Time            `json:"endDate"`
	NumberOfDays    float64              `json:"numberOfDays"`
	Reason          string               `json:"reason"`
	Status          domain.LeaveStatus   `json:"status"`
	ApprovedBy      *UserSummaryResponse `json:"approvedBy"`
	ApproverName    *string              `json:"approverName"`
	ActionDate      *time.Time           `json:"actionDate"`
	RejectionReason *string              `json:"rejectionReason"`
	Attachment      *string              `json:"attachment"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func summary(s *domain.UserSummary) *UserSummaryResponse {
	if s == nil {
		return nil
	}
	return &UserSummaryResponse{ID: s.ID, Name: s.Name, Email: s.Email, Department: s.Department}
}

// NewLeaveResponse maps a resolved leave view.
func NewLeaveResponse(v *domain.LeaveView) LeaveResponse {
	return LeaveResponse{
		ID:              v.ID,
		User:            summary(v.Owner),
		LeaveType:       v.LeaveType,
		StartDate:       v.StartDate,
		EndDate:         v.EndDate,
		NumberOfDays:    v.NumberOfDays,
		Reason:          v.Reason,
		Status:          v.Status,
		ApprovedBy:      summary(v.Approver),
		ApproverName:    v.ApproverName,
		ActionDate:      v.ActionDate,
		RejectionReason: v.RejectionReason,
		Attachment:      v.Attachment,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// NewLeaveResponses maps a slice of views.
func NewLeaveResponses(views []domain.LeaveView) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(views))
	for i := range views {
		out = append(out, NewLeaveResponse(&views[i]))
	}
	return out
}

// LeaveHistoryResponse is one audit entry.
type LeaveHistoryResponse struct {
	ID         string              `json:"id"`
	ActorID    string              `json:"actorId"`
	FromStatus *domain.LeaveStatus `json:"fromStatus"`
	ToStatus   domain.LeaveStatus  `json:"toStatus"`
	Comment    string              `json:"comment,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// NewLeaveHistoryResponses maps audit entries.
func NewLeaveHistoryResponses(entries []domain.LeaveHistory) []LeaveHistoryResponse {
	out := make([]LeaveHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaveHistoryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Comment:    e.Comment,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
