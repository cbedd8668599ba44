package domain

import "time"

// LeaveStatus enumerates lifecycle states for leave requests.
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "Pending"
	LeaveStatusApproved  LeaveStatus = "Approved"
	LeaveStatusRejected  LeaveStatus = "Rejected"
	LeaveStatusCancelled LeaveStatus = "Cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected || s == LeaveStatusCancelled
}

// Valid reports whether s is a known status.
func (s LeaveStatus) Valid() bool {
	return s == LeaveStatusPending || s.Terminal()
}

// LeaveType enumerates the nine leave categories.
type LeaveType string

const (
	LeaveTypeCasual    LeaveType = "Casual Leave"
	LeaveTypeEarned    LeaveType = "Earned Leave"
	LeaveTypeMarriage  LeaveType = "Marriage Leave"
	LeaveTypeSick      LeaveType = "Sick Leave"
	LeaveTypeMaternity LeaveType = "Maternity Leave"
	LeaveTypePaternity LeaveType = "Paternity Leave"
	LeaveTypeFloater   LeaveType = "Floater Leave"
	LeaveTypeUnpaid    LeaveType = "Unpaid Leave"
	LeaveTypeSpecial   LeaveType = "Special Leave"
)

// LeaveTypes lists every recognised category.
var LeaveTypes = []LeaveType{
	LeaveTypeCasual,
	LeaveTypeEarned,
	LeaveTypeMarriage,
	LeaveTypeSick,
	LeaveTypeMaternity,
	LeaveTypePaternity,
	LeaveTypeFloater,
	LeaveTypeUnpaid,
	LeaveTypeSpecial,
}

// Valid reports whether t is one of the recognised categories.
func (t LeaveType) Valid() bool {
	for _, candidate := range LeaveTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// DefaultRejectionReason is recorded when a reviewer rejects without a reason.
const DefaultRejectionReason = "No reason provided"

// LeaveRequest is one leave application owned by one user.
// Approver fields are set only while Status is Approved or Rejected.
type LeaveRequest struct {
	ID              string
	UserID          string
	LeaveType       LeaveType
	StartDate       time.Time
	EndDate         time.Time
	NumberOfDays    float64
	Reason          string
	Status          LeaveStatus
	ApprovedBy      *string
	ApproverName    *string
	ActionDate      *time.Time
	RejectionReason *string
	Attachment      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaveDecision carries the fields written by a status transition.
type LeaveDecision struct {
	Status          LeaveStatus
	ApprovedBy      *string
	ApproverName    *string
	ActionDate      *time.Time
	RejectionReason *string
}

// Apply copies the decision onto the request.
func (d LeaveDecision) Apply(leave *LeaveRequest) {
	leave.Status = d.Status
	leave.ApprovedBy = d.ApprovedBy
	leave.ApproverName = d.ApproverName
	leave.ActionDate = d.ActionDate
	leave.RejectionReason = d.RejectionReason
}

// UserSummary is the identity snapshot shown next to a leave request.
type UserSummary struct {
	ID         string
	Name       string
	Email      string
	Department *string
}

// LeaveView is a leave request with owner and approver resolved for display.
type LeaveView struct {
	LeaveRequest
	Owner    *UserSummary
	Approver *UserSummary
}
