package seasonal

import (
	"fmt"
	"math"

	"SeasonEdge/internal/domain/models"
)

// Findings promotes calendar months with statistically significant mean
// returns into ranked findings. A month qualifies when its return differs
// from zero at the configured significance level and spans enough years.
// When only the test against the series-wide mean is significant, the
// zero test decides promotion.
func (a *Analyzer) Findings(stats []models.MonthlyStat) []models.PatternFinding {
	out := make([]models.PatternFinding, 0)
	for _, st := range stats {
		if st.SampleCount < a.MinSampleYears {
			continue
		}
		if st.PValueZero >= a.SignificanceLevel {
			continue
		}

		direction := "strength"
		if st.MeanReturn < 0 {
			direction = "weakness"
		}
		conf := seasonalConfidence(st.PValueZero, st.SampleCount)
		out = append(out, models.PatternFinding{
			Label:    fmt.Sprintf("%s %s", st.Month, direction),
			Category: models.CategorySeasonal,
			Description: fmt.Sprintf(
				"%s averaged %+.2f%% across %d years (win rate %.0f%%, p=%.3f)",
				st.Month, st.MeanReturn*100, st.SampleCount, st.WinRate*100, st.PValueZero),
			Confidence: conf,
			Metrics: map[string]float64{
				"mean_return": st.MeanReturn,
				"win_rate":    st.WinRate,
				"p_value":     st.PValueZero,
				"effect_size": st.EffectSize,
				"years":       float64(st.SampleCount),
			},
		})
	}
	return out
}

// PeriodFindings applies the same promotion gate to quarter and weekday
// buckets. Confidence is discounted by the years of history backing the
// series, not the bucket's raw sample count, so per-session weekday
// buckets do not look artificially deep.
func (a *Analyzer) PeriodFindings(stats []models.PeriodStat, years int) []models.PatternFinding {
	out := make([]models.PatternFinding, 0)
	for _, st := range stats {
		if st.SampleCount < a.MinSampleYears {
			continue
		}
		if st.PValueZero >= a.SignificanceLevel {
			continue
		}

		direction := "strength"
		if st.MeanReturn < 0 {
			direction = "weakness"
		}
		out = append(out, models.PatternFinding{
			Label:    fmt.Sprintf("%s %s", st.Period, direction),
			Category: models.CategorySeasonal,
			Description: fmt.Sprintf(
				"%s averaged %+.2f%% per period (win rate %.0f%%, p=%.3f)",
				st.Period, st.MeanReturn*100, st.WinRate*100, st.PValueZero),
			Confidence: seasonalConfidence(st.PValueZero, years),
			Metrics: map[string]float64{
				"mean_return": st.MeanReturn,
				"win_rate":    st.WinRate,
				"p_value":     st.PValueZero,
				"samples":     float64(st.SampleCount),
			},
		})
	}
	return out
}

// seasonalConfidence discounts statistical significance by sample depth:
// the p-value complement scaled by years of history, saturating at ten.
func seasonalConfidence(pValue float64, years int) float64 {
	c := (1 - pValue) * math.Min(1, float64(years)/10)
	if c < 0 {
		return 0
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}
