package repository

import (
	"context"
	"errors"

	"RiskLens/internal/domain/models"
)

// ErrUnavailable signals that a provider has no data for a symbol
// (missing credential, rate limit, network failure, empty payload).
// The orchestrator falls through to the next provider.
var ErrUnavailable = errors.New("provider unavailable")

// PriceProvider fetches a daily close series for one symbol. The
// returned series is already normalized (UTC days, sorted, deduped).
type PriceProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, lookbackDays int) (models.PriceSeries, error)
}

// PriceStore persists per-user, per-symbol price series with upsert
// semantics on (user_id, symbol).
type PriceStore interface {
	Get(ctx context.Context, userID string, symbols []string) ([]*models.CacheRecord, error)
	Put(ctx context.Context, rec *models.CacheRecord) error
	Health(ctx context.Context) error
	Close() error
}

// ReportPublisher emits completed risk reports for downstream
// consumers. Optional: a nil publisher disables publication.
type ReportPublisher interface {
	Publish(ctx context.Context, userID string, report *models.RiskReport) error
	Close() error
}

// Metrics records pipeline instrumentation.
type Metrics interface {
	RecordFetch(provider string, ok bool)
	RecordCacheEvent(event string)
	RecordAnalysis(seconds float64)
	RecordSyntheticFallback()
}
