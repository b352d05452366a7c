// Package events publishes schedule lifecycle events for downstream
// consumers (notifications, audit, analytics). Publishing is best-effort:
// the service treats a failed publish as a warning, never as a failed
// request.
package events

import (
	"context"
	"fmt"
	"time"

	"custodia/pkg/kafka"
	kafka_config "custodia/pkg/kafka/config"
	kafka_middleware "custodia/pkg/kafka/middleware"
	"custodia/pkg/logger"
	"custodia/pkg/model"
)

const (
	Topic    = "cleaning-schedule-events"
	DLQTopic = "cleaning-schedule-events-dlq"

	SchemaVersion = "1.0"
)

// Event types carried in the event-type header and payload.
const (
	ScheduleCreated     = "schedule.created"
	ScheduleUpdated     = "schedule.updated"
	ScheduleDeleted     = "schedule.deleted"
	ScheduleApproved    = "schedule.approved"
	ScheduleDisapproved = "schedule.disapproved"
)

// ScheduleEvent is the wire payload. OccurredAt is set at publish time.
type ScheduleEvent struct {
	EventType  string     `json:"event_type"`
	ScheduleID string     `json:"schedule_id"`
	RoomID     string     `json:"room_id"`
	CleanerID  string     `json:"cleaner_id"`
	Date       string     `json:"date"`
	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type Publisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewPublisher(cfg *kafka_config.Config, source string, log *logger.Logger) (*Publisher, error) {
	producer, err := kafka.NewProducer(cfg, Topic, DLQTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule event producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware())

	log.Info("Schedule event publisher initialized", "topic", Topic, "brokers", cfg.Brokers)

	return &Publisher{
		producer: producer,
		source:   source,
		log:      log,
	}, nil
}

// PublishScheduleEvent emits one lifecycle event keyed by schedule id, so
// events for the same schedule stay ordered within a partition.
func (p *Publisher) PublishScheduleEvent(ctx context.Context, eventType string, sc *model.Schedule) error {
	event := ScheduleEvent{
		EventType:  eventType,
		ScheduleID: sc.ID,
		RoomID:     sc.RoomID,
		CleanerID:  sc.CleanerID,
		Date:       sc.Date,
		Status:     sc.Status,
		ApprovedAt: sc.ApprovedAt,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(sc.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
