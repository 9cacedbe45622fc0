package repository

import (
	"context"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/pkg/kafka"
)

// reportEvent is the message shape published for each completed
// analysis.
type reportEvent struct {
	UserID     string             `json:"user_id,omitempty"`
	Report     *models.RiskReport `json:"report"`
	AnalyzedAt time.Time          `json:"analyzed_at"`
}

// KafkaReportPublisher emits completed risk reports to Kafka. Messages
// are keyed by user so one user's reports stay ordered.
type KafkaReportPublisher struct {
	producer *kafka.Producer
}

// NewKafkaReportPublisher wraps a producer.
func NewKafkaReportPublisher(producer *kafka.Producer) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer}
}

// Publish sends one report event.
func (p *KafkaReportPublisher) Publish(ctx context.Context, userID string, report *models.RiskReport) error {
	key := userID
	if key == "" {
		key = "anonymous"
	}
	return p.producer.Publish(ctx, key, reportEvent{
		UserID:     userID,
		Report:     report,
		AnalyzedAt: time.Now().UTC(),
	})
}

// Close flushes and closes the producer.
func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
