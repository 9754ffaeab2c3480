// Package features derives the versioned model-input matrix from a
// prepared return series.
package features

import (
	"math"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract builds the feature matrix. Rows inside the warm-up window are
// dropped so every emitted row is fully populated; no NaNs, ever.
func (e *Extractor) Extract(series *models.ReturnSeries) *models.FeatureMatrix {
	names := featureNames()
	n := series.Len()
	returns := series.Returns()

	// synthetic price index reconstructed from cumulative returns
	price := make([]float64, n)
	for i, p := range series.Points {
		price[i] = 1 + p.CumReturn
	}

	ema12 := ema(price, 12)
	ema26 := ema(price, 26)
	rsi := rsi14(returns)

	m := &models.FeatureMatrix{
		SchemaVersion: SchemaVersion,
		Names:         names,
	}
	for i := warmup; i < n; i++ {
		p := series.Points[i]
		row := make([]float64, 0, len(names))
		row = append(row,
			returns[i-1], returns[i-5], returns[i-20],
			stat.StdDev(returns[i-5:i]),
			stat.StdDev(returns[i-20:i]),
			stat.StdDev(returns[i-60:i]),
			ratio(price[i], stat.Mean(price[i-20:i])),
			ratio(price[i], stat.Mean(price[i-50:i])),
			ratio(ema12[i], price[i]),
			ratio(ema26[i], price[i]),
			rsi[i],
			price[i]/price[i-5]-1,
			price[i]/price[i-20]-1,
			b2f(p.MonthStart), b2f(p.MonthEnd),
		)
		for mo := time.January; mo <= time.December; mo++ {
			row = append(row, b2f(p.Month == mo))
		}
		for d := time.Monday; d <= time.Friday; d++ {
			row = append(row, b2f(p.Weekday == d))
		}

		m.Dates = append(m.Dates, p.Date)
		m.Rows = append(m.Rows, row)
	}
	return m
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func ema(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rsi14 is Wilder's relative strength index over daily returns.
func rsi14(returns []float64) []float64 {
	const period = 14
	out := make([]float64, len(returns))
	var avgGain, avgLoss float64
	for i, r := range returns {
		gain, loss := 0.0, 0.0
		if r > 0 {
			gain = r
		} else {
			loss = -r
		}
		if i < period {
			avgGain += gain / period
			avgLoss += loss / period
			out[i] = 50
			continue
		}
		avgGain = (avgGain*(period-1) + gain) / period
		avgLoss = (avgLoss*(period-1) + loss) / period
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
		if math.IsNaN(out[i]) {
			out[i] = 50
		}
	}
	return out
}
