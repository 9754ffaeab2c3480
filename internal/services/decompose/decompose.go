// Package decompose splits the price path into trend, seasonal, and
// residual components, then runs the residual and stability diagnostics.
package decompose

import (
	"fmt"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

// period is the seasonal cycle length in sessions, roughly one trading
// month.
const period = 21

type Decomposer struct {
	BreakSensitivity float64
}

func NewDecomposer(breakSensitivity float64) *Decomposer {
	if breakSensitivity <= 0 {
		breakSensitivity = 2.0
	}
	return &Decomposer{BreakSensitivity: breakSensitivity}
}

// Decompose runs classical moving-average decomposition over the
// reconstructed price index, picks additive vs multiplicative by a
// level-variance scaling pre-test, and attaches stationarity and
// serial-correlation diagnostics plus the structural break scan.
func (d *Decomposer) Decompose(series *models.ReturnSeries) (*models.Decomposition, []models.StructuralBreak, error) {
	n := series.Len()
	if n < 2*period {
		return nil, nil, fmt.Errorf("%w: %d sessions, need %d", models.ErrDecomposition, n, 2*period)
	}

	price := make([]float64, n)
	for i, c := range series.CumReturns() {
		price[i] = 1 + c
	}

	multiplicative := varianceScalesWithLevel(price)
	model := "additive"
	if multiplicative {
		model = "multiplicative"
	}
	resid := residuals(price, multiplicative)

	trend := centeredMA(price, period)
	detr := detrended(price, trend, multiplicative)
	seasonal := seasonalComponent(detr)

	dec := &models.Decomposition{
		Model:            model,
		TrendSlope:       stat.LinearSlope(compact(trend)),
		SeasonalStrength: seasonalStrength(seasonal, resid),
	}

	returns := series.Returns()
	dec.ADFStatistic, dec.ADFPValue = adfTest(returns)
	dec.Stationary = dec.ADFPValue < 0.05
	dec.LjungBoxStatistic, dec.LjungBoxPValue = ljungBox(resid, 10)
	dec.ResidualCorrelation = dec.LjungBoxPValue < 0.05

	breaks := d.scanBreaks(series)
	return dec, breaks, nil
}

// varianceScalesWithLevel decides the decomposition model: multiplicative
// when the dispersion of the price grows with its level, measured by the
// correlation between per-window means and stddevs across the series.
// Only positive series qualify.
func varianceScalesWithLevel(price []float64) bool {
	for _, v := range price {
		if v <= 0 {
			return false
		}
	}
	var means, sds []float64
	for i := 0; i+period <= len(price); i += period {
		win := price[i : i+period]
		means = append(means, stat.Mean(win))
		sds = append(sds, stat.StdDev(win))
	}
	if len(means) < 4 {
		return false
	}
	return stat.Correlation(means, sds) > 0.5
}

// residuals returns the decomposition residual under the given model.
func residuals(price []float64, multiplicative bool) []float64 {
	trend := centeredMA(price, period)
	detr := detrended(price, trend, multiplicative)
	seasonal := seasonalComponent(detr)

	var out []float64
	for i, v := range detr {
		if trend[i] == 0 && !multiplicative {
			continue
		}
		s := seasonal[i%period]
		if multiplicative {
			if s == 0 {
				continue
			}
			out = append(out, v/s)
		} else {
			out = append(out, v-s)
		}
	}
	return out
}

// centeredMA leaves zeroes in the half-window edges.
func centeredMA(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	half := window / 2
	for i := half; i < len(xs)-half; i++ {
		var s float64
		for j := i - half; j <= i+half; j++ {
			s += xs[j]
		}
		out[i] = s / float64(2*half+1)
	}
	return out
}

func detrended(price, trend []float64, multiplicative bool) []float64 {
	out := make([]float64, len(price))
	for i := range price {
		if trend[i] == 0 {
			if multiplicative {
				out[i] = 1
			}
			continue
		}
		if multiplicative {
			out[i] = price[i] / trend[i]
		} else {
			out[i] = price[i] - trend[i]
		}
	}
	return out
}

// seasonalComponent averages the detrended series by position in the
// cycle, one value per session of the period.
func seasonalComponent(detr []float64) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detr {
		sums[i%period] += v
		counts[i%period]++
	}
	out := make([]float64, period)
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}

// seasonalStrength is the share of detrended variance explained by the
// seasonal component: 1 - Var(resid)/Var(seasonal + resid), floored at 0.
func seasonalStrength(seasonal, resid []float64) float64 {
	if len(resid) == 0 {
		return 0
	}
	both := make([]float64, len(resid))
	for i := range resid {
		both[i] = resid[i] + seasonal[i%period]
	}
	vb := stat.Variance(both)
	if vb == 0 {
		return 0
	}
	s := 1 - stat.Variance(resid)/vb
	if s < 0 {
		return 0
	}
	return s
}

func compact(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}
