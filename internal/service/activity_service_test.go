package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/observability"
)

func TestActivityServiceLogsAndCountsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	NewActivityService(dispatcher, zap.New(core), metrics).RegisterHandlers()

	reason := "short staffed"
	from := domain.LeaveStatusPending
	leave := &domain.LeaveRequest{
		ID:              "leave-1",
		UserID:          "owner-1",
		Status:          domain.LeaveStatusRejected,
		RejectionReason: &reason,
	}
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID:      "evt-1",
		Type:    events.EventLeaveRejected,
		LeaveID: leave.ID,
		ActorID: "coord-1",
		Payload: events.NewLeavePayload(leave, &from),
	}))

	entries := logs.FilterMessage(string(events.EventLeaveRejected)).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "leave-1", fields["leave_id"])
	assert.Equal(t, "Pending", fields["from_status"])
	assert.Equal(t, "short staffed", fields["reason"])
	assert.Equal(t, "activity", entries[0].LoggerName)

	assert.Equal(t, int64(1), metrics.Snapshot().Events["leave.rejected"])
}
