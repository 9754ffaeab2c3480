package repository

import (
	"context"
	"time"

	"SeasonEdge/internal/domain/models"
)

// CandleSource provides the input contract: an ordered daily OHLCV series
// for one symbol over a date range. Implementations guarantee ascending
// date order and non-negative numeric fields, or return an error instead
// of an empty/malformed series.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
}

// CandleSink accepts bar batches from backfill tooling. Implementations
// upsert by (symbol, date).
type CandleSink interface {
	Insert(ctx context.Context, candles []models.Candle) error
}

// Metrics records engine-level observability counters.
type Metrics interface {
	RecordRun(symbol string, seconds float64)
	RecordModuleError(module string)
	RecordCache(hit bool)
}
