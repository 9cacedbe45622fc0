package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/pkg/clickhouse"
)

// Schema returns the DDL for the price cache table. ReplacingMergeTree
// keyed on (user_id, symbol) gives last-write-wins upsert semantics;
// reads use FINAL to collapse unmerged duplicates.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS price_cache (
			user_id      String,
			symbol       String,
			series       String,
			start_date   Date,
			end_date     Date,
			last_fetched DateTime64(3, 'UTC')
		)
		ENGINE = ReplacingMergeTree(last_fetched)
		ORDER BY (user_id, symbol)`,
	}
}

// ClickHousePriceStore persists per-user price series in ClickHouse.
type ClickHousePriceStore struct {
	client *clickhouse.Client
}

// NewClickHousePriceStore creates the store and ensures the schema.
func NewClickHousePriceStore(ctx context.Context, client *clickhouse.Client) (*ClickHousePriceStore, error) {
	if err := client.InitSchema(ctx, Schema()); err != nil {
		return nil, err
	}
	return &ClickHousePriceStore{client: client}, nil
}

// Get reads the latest cached record per symbol for a user.
func (s *ClickHousePriceStore) Get(ctx context.Context, userID string, symbols []string) ([]*models.CacheRecord, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(symbols)), ",")
	query := fmt.Sprintf(`
		SELECT symbol, series, start_date, end_date, last_fetched
		FROM price_cache FINAL
		WHERE user_id = ? AND symbol IN (%s)`, placeholders)

	args := make([]interface{}, 0, len(symbols)+1)
	args = append(args, userID)
	for _, sym := range symbols {
		args = append(args, sym)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("price cache query: %w", err)
	}
	defer rows.Close()

	var records []*models.CacheRecord
	for rows.Next() {
		var (
			symbol      string
			rawSeries   string
			startDate   time.Time
			endDate     time.Time
			lastFetched time.Time
		)
		if err := rows.Scan(&symbol, &rawSeries, &startDate, &endDate, &lastFetched); err != nil {
			return nil, fmt.Errorf("price cache scan: %w", err)
		}

		var payload models.SeriesPayload
		if err := json.Unmarshal([]byte(rawSeries), &payload); err != nil {
			// Corrupt row, treat as missing.
			continue
		}

		records = append(records, &models.CacheRecord{
			UserID:      userID,
			Symbol:      symbol,
			Series:      payload.Series(),
			StartDate:   startDate.UTC(),
			EndDate:     endDate.UTC(),
			LastFetched: lastFetched.UTC(),
		})
	}
	return records, rows.Err()
}

// Put inserts a record. ReplacingMergeTree makes this an upsert on
// (user_id, symbol).
func (s *ClickHousePriceStore) Put(ctx context.Context, rec *models.CacheRecord) error {
	raw, err := json.Marshal(rec.Series.Payload())
	if err != nil {
		return fmt.Errorf("price cache marshal: %w", err)
	}

	_, err = s.client.DB().ExecContext(ctx, `
		INSERT INTO price_cache (user_id, symbol, series, start_date, end_date, last_fetched)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Symbol, string(raw), rec.StartDate, rec.EndDate, rec.LastFetched,
	)
	if err != nil {
		return fmt.Errorf("price cache insert: %w", err)
	}
	return nil
}

// Health pings the backing connection.
func (s *ClickHousePriceStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases the connection pool.
func (s *ClickHousePriceStore) Close() error {
	return s.client.Close()
}
