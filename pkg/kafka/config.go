package kafka

import "time"

// Config holds Kafka producer settings.
type Config struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"risklens.reports"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"100ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	RequiredAcks int           `yaml:"required_acks" default:"1"`
}
