package usecase

import (
	"fmt"
	"math"

	"SeasonEdge/internal/domain/models"
)

// strategyFindings translates the significant calendar months into
// actionable long/avoid suggestions. The suggestion inherits a
// discounted version of the underlying month's statistical confidence.
func strategyFindings(stats []models.MonthlyStat, significance float64, minYears int) []models.PatternFinding {
	var best, worst *models.MonthlyStat
	for i := range stats {
		st := &stats[i]
		if st.SampleCount < minYears || st.PValueZero >= significance {
			continue
		}
		if st.MeanReturn > 0 && (best == nil || st.MeanReturn > best.MeanReturn) {
			best = st
		}
		if st.MeanReturn < 0 && (worst == nil || st.MeanReturn < worst.MeanReturn) {
			worst = st
		}
	}

	var out []models.PatternFinding
	if best != nil {
		out = append(out, models.PatternFinding{
			Label:    fmt.Sprintf("long bias in %s", best.Month),
			Category: models.CategoryStrategy,
			Description: fmt.Sprintf(
				"holding through %s captured %+.2f%% on average with a %.0f%% win rate",
				best.Month, best.MeanReturn*100, best.WinRate*100),
			Confidence: 0.9 * statConfidence(best.PValueZero, best.SampleCount),
			Metrics: map[string]float64{
				"mean_return": best.MeanReturn,
				"win_rate":    best.WinRate,
			},
		})
	}
	if worst != nil {
		out = append(out, models.PatternFinding{
			Label:    fmt.Sprintf("reduce exposure in %s", worst.Month),
			Category: models.CategoryStrategy,
			Description: fmt.Sprintf(
				"%s averaged %+.2f%% and was positive only %.0f%% of years",
				worst.Month, worst.MeanReturn*100, worst.WinRate*100),
			Confidence: 0.9 * statConfidence(worst.PValueZero, worst.SampleCount),
			Metrics: map[string]float64{
				"mean_return": worst.MeanReturn,
				"win_rate":    worst.WinRate,
			},
		})
	}
	if best != nil && worst != nil && best.MeanReturn-worst.MeanReturn > 0.05 {
		weaker := math.Min(statConfidence(best.PValueZero, best.SampleCount),
			statConfidence(worst.PValueZero, worst.SampleCount))
		out = append(out, models.PatternFinding{
			Label:    fmt.Sprintf("calendar spread %s vs %s", best.Month, worst.Month),
			Category: models.CategoryStrategy,
			Description: fmt.Sprintf(
				"rotating from %s into %s spanned a %.1f%% average monthly gap",
				worst.Month, best.Month, (best.MeanReturn-worst.MeanReturn)*100),
			Confidence: 0.9 * weaker,
			Metrics: map[string]float64{
				"spread": best.MeanReturn - worst.MeanReturn,
			},
		})
	}
	return out
}

func statConfidence(pValue float64, years int) float64 {
	c := (1 - pValue) * math.Min(1, float64(years)/10)
	if c > 0.95 {
		return 0.95
	}
	if c < 0 {
		return 0
	}
	return c
}

// patternStrength condenses the monthly stat table into one score.
func patternStrength(stats []models.MonthlyStat, significance float64) *models.PatternStrength {
	if len(stats) == 0 {
		return nil
	}

	var magSum, winSum, consSum float64
	significant := 0
	for _, st := range stats {
		magSum += math.Abs(st.MeanReturn)
		winSum += 2 * math.Abs(st.WinRate-0.5)
		if st.PValueZero < 2*significance {
			significant++
		}
		// directional consistency: how often the month agreed with its own sign
		if st.MeanReturn >= 0 {
			consSum += st.WinRate
		} else {
			consSum += 1 - st.WinRate
		}
	}
	n := float64(len(stats))

	ps := &models.PatternStrength{
		Magnitude:      math.Min(1, magSum/n/0.05),
		WinRateQuality: winSum / n,
		Reliability:    float64(significant) / n,
		Consistency:    consSum / n,
	}
	ps.Overall = 0.3*ps.Reliability + 0.3*ps.Magnitude + 0.2*ps.WinRateQuality + 0.2*ps.Consistency

	switch {
	case ps.Overall >= 0.7:
		ps.Interpretation = "strong seasonal structure, calendar effects dominate this series"
	case ps.Overall >= 0.4:
		ps.Interpretation = "moderate seasonal structure, calendar effects present but not dominant"
	default:
		ps.Interpretation = "weak seasonal structure, returns are mostly calendar-independent"
	}
	return ps
}
