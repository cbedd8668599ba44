package worker

import (
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/service"
)

// StartEventSubscribers registers the in-process leave event subscribers.
// The Kafka sink is optional.
func StartEventSubscribers(dispatcher events.Dispatcher, activity *service.ActivityService, sink *events.KafkaSink) {
	if activity != nil {
		activity.RegisterHandlers()
	}
	if sink != nil && dispatcher != nil {
		sink.Subscribe(dispatcher)
	}
}
