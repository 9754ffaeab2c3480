package decompose

import (
	"math"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

// scanBreaks compares adjacent rolling windows of returns and flags dates
// where the mean or the variance shifts beyond the sensitivity threshold.
// Nearby detections of the same type collapse to the strongest one.
func (d *Decomposer) scanBreaks(series *models.ReturnSeries) []models.StructuralBreak {
	returns := series.Returns()
	n := len(returns)

	window := 252
	if n/4 < window {
		window = n / 4
	}
	if window < 20 {
		return nil
	}
	cooldown := window / 2

	var out []models.StructuralBreak
	lastMean, lastVol := -cooldown, -cooldown

	for t := window; t+window <= n; t++ {
		before := returns[t-window : t]
		after := returns[t : t+window]

		bm, am := stat.Mean(before), stat.Mean(after)
		bs, as := stat.StdDev(before), stat.StdDev(after)

		// mean shift in units of the pooled standard error
		if bs > 0 || as > 0 {
			se := math.Sqrt((bs*bs + as*as) / float64(window))
			if se > 0 {
				z := (am - bm) / se
				if math.Abs(z) >= d.BreakSensitivity {
					out, lastMean = d.record(out, series, t, models.BreakMeanShift, z, lastMean, cooldown)
				}
			}
		}

		// volatility shift as a log variance ratio scaled to z
		if bs > 0 && as > 0 {
			z := math.Log(as/bs) * math.Sqrt(float64(window))
			if math.Abs(z) >= d.BreakSensitivity {
				out, lastVol = d.record(out, series, t, models.BreakVolatilityShift, z, lastVol, cooldown)
			}
		}
	}
	return out
}

// record appends a break or, inside the cooldown span, keeps whichever of
// the colliding detections has the larger magnitude.
func (d *Decomposer) record(out []models.StructuralBreak, series *models.ReturnSeries, t int, typ models.BreakType, z float64, last, cooldown int) ([]models.StructuralBreak, int) {
	brk := models.StructuralBreak{
		Date:          series.Points[t].Date,
		Type:          typ,
		Magnitude:     math.Abs(z),
		TestStatistic: z,
	}
	if t-last < cooldown {
		for i := len(out) - 1; i >= 0; i-- {
			if out[i].Type != typ {
				continue
			}
			if brk.Magnitude > out[i].Magnitude {
				out[i] = brk
				return out, t
			}
			return out, last
		}
	}
	return append(out, brk), t
}
