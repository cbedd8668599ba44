package domain

import "time"

// LeaveHistory is an immutable audit entry for one status transition.
type LeaveHistory struct {
	ID         string
	LeaveID    string
	ActorID    string
	FromStatus *LeaveStatus
	ToStatus   LeaveStatus
	Comment    string
	CreatedAt  time.Time
}
