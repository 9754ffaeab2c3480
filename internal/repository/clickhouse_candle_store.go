package repository

import (
	"context"
	"fmt"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/pkg/clickhouse"
)

// Schema statements for the daily bar table, applied idempotently on
// startup.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS daily_bars (
		symbol LowCardinality(String),
		date   Date,
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, date)`,
}

// CHCandleStore reads daily OHLCV bars from ClickHouse.
type CHCandleStore struct {
	client *clickhouse.Client
}

func NewCHCandleStore(client *clickhouse.Client) *CHCandleStore {
	return &CHCandleStore{client: client}
}

// Candles returns the symbol's bars inside [from, to], ascending by date.
func (s *CHCandleStore) Candles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	const q = `
		SELECT date, open, high, low, close, volume
		FROM daily_bars FINAL
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`

	rows, err := s.client.DB().QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	var out []models.Candle
	for rows.Next() {
		c := models.Candle{Symbol: symbol}
		if err := rows.Scan(&c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan daily bar: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily bars: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no bars for %s between %s and %s",
			symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return out, nil
}

// Insert stores a batch of bars, used by backfill tooling and tests.
func (s *CHCandleStore) Insert(ctx context.Context, candles []models.Candle) error {
	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_bars (symbol, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Symbol, c.Date, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append bar: %w", err)
		}
	}
	return tx.Commit()
}
