package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const kafkaSchemaVersion = "v1"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards leave events to a Kafka topic keyed by leave id.
type KafkaSink struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaSink builds an asynchronous writer so publishing never blocks a request.
func NewKafkaSink(brokers []string, topic string, logger *zap.Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaSink{writer: writer, logger: logger}
}

type kafkaEnvelope struct {
	SchemaVersion string `json:"schemaVersion"`
	Event
}

// Handle serializes event and hands it to the writer.
func (s *KafkaSink) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(kafkaEnvelope{SchemaVersion: kafkaSchemaVersion, Event: event})
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.LeaveID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
}

// Subscribe registers the sink for every leave event.
func (s *KafkaSink) Subscribe(dispatcher Dispatcher) {
	for _, eventType := range LeaveEventTypes {
		dispatcher.Subscribe(eventType, s.Handle)
	}
}

// Close flushes pending messages.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
