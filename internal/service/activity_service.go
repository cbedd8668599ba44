package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/observability"
)

// ActivityService turns leave events into structured activity log lines and
// event counters.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger.Named("activity"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.LeaveEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordEvent(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("leave_id", event.LeaveID),
		zap.String("actor_id", event.ActorID),
		zap.String("owner_id", event.Payload.OwnerID),
		zap.String("status", string(event.Payload.Status)),
	}
	if event.Payload.FromStatus != nil {
		fields = append(fields, zap.String("from_status", string(*event.Payload.FromStatus)))
	}
	switch event.Type {
	case events.EventLeaveRequested, events.EventLeaveUpdated:
		fields = append(fields,
			zap.String("leave_type", string(event.Payload.LeaveType)),
			zap.Float64("days", event.Payload.NumberOfDays))
	case events.EventLeaveRejected:
		if event.Payload.RejectionReason != nil {
			fields = append(fields, zap.String("reason", *event.Payload.RejectionReason))
		}
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}
