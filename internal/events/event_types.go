package events

import (
	"time"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeaveRequested EventType = "leave.requested"
	EventLeaveUpdated   EventType = "leave.updated"
	EventLeaveApproved  EventType = "leave.approved"
	EventLeaveRejected  EventType = "leave.rejected"
	EventLeaveCancelled EventType = "leave.cancelled"
)

// LeaveEventTypes lists every type a leave sink subscribes to.
var LeaveEventTypes = []EventType{
	EventLeaveRequested,
	EventLeaveUpdated,
	EventLeaveApproved,
	EventLeaveRejected,
	EventLeaveCancelled,
}

// EventForStatus returns the event emitted when a request enters status.
func EventForStatus(status domain.LeaveStatus) EventType {
	switch status {
	case domain.LeaveStatusApproved:
		return EventLeaveApproved
	case domain.LeaveStatusRejected:
		return EventLeaveRejected
	case domain.LeaveStatusCancelled:
		return EventLeaveCancelled
	}
	return EventLeaveRequested
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	LeaveID   string       `json:"leaveId"`
	ActorID   string       `json:"actorId"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   LeavePayload `json:"payload"`
}

// LeavePayload carries the request state after the change.
type LeavePayload struct {
	OwnerID         string              `json:"ownerId"`
	LeaveType       domain.LeaveType    `json:"leaveType"`
	StartDate       time.Time           `json:"startDate"`
	EndDate         time.Time           `json:"endDate"`
	NumberOfDays    float64             `json:"numberOfDays"`
	FromStatus      *domain.LeaveStatus `json:"fromStatus,omitempty"`
	Status          domain.LeaveStatus  `json:"status"`
	ApproverName    *string             `json:"approverName,omitempty"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
}

// NewLeavePayload snapshots leave for an event.
func NewLeavePayload(leave *domain.LeaveRequest, from *domain.LeaveStatus) LeavePayload {
	return LeavePayload{
		OwnerID:         leave.UserID,
		LeaveType:       leave.LeaveType,
		StartDate:       leave.StartDate,
		EndDate:         leave.EndDate,
		NumberOfDays:    leave.NumberOfDays,
		FromStatus:      from,
		Status:          leave.Status,
		ApproverName:    leave.ApproverName,
		RejectionReason: leave.RejectionReason,
	}
}
