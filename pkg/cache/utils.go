package cache

import (
	"fmt"
	"time"
)

// AnalysisKey builds the cache key for one analysis run. The feature
// schema version is part of the key so a schema bump never serves stale
// results.
func AnalysisKey(symbol string, from, to time.Time, schemaVersion string) string {
	return fmt.Sprintf("analysis:%s:%s:%s:%s",
		symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), schemaVersion)
}

// AnalysisPattern matches every cached run for one symbol, used for
// invalidation after a data backfill.
func AnalysisPattern(symbol string) string {
	return fmt.Sprintf("analysis:%s:*", symbol)
}
