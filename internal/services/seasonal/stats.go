// Package seasonal computes calendar-bucketed return statistics and the
// statistically validated findings they support.
package seasonal

import (
	"fmt"
	"math"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

type Analyzer struct {
	SignificanceLevel float64
	MinSampleYears    int
}

func NewAnalyzer(significanceLevel float64, minSampleYears int) *Analyzer {
	if significanceLevel <= 0 || significanceLevel >= 1 {
		significanceLevel = 0.05
	}
	if minSampleYears < 1 {
		minSampleYears = 3
	}
	return &Analyzer{SignificanceLevel: significanceLevel, MinSampleYears: minSampleYears}
}

// monthlySamples compounds daily returns into one aggregate per
// (year, month) pair, keyed by month.
func monthlySamples(series *models.ReturnSeries) map[time.Month][]float64 {
	type key struct {
		year  int
		month time.Month
	}
	agg := make(map[key]float64)
	order := make([]key, 0)
	for _, p := range series.Points {
		k := key{p.Year, p.Month}
		if _, ok := agg[k]; !ok {
			agg[k] = 1
			order = append(order, k)
		}
		agg[k] *= 1 + p.Return
	}
	out := make(map[time.Month][]float64, 12)
	for _, k := range order {
		out[k.month] = append(out[k.month], agg[k]-1)
	}
	return out
}

// MonthlyStats returns one stat block per calendar month present in the
// series, ordered January through December.
func (a *Analyzer) MonthlyStats(series *models.ReturnSeries) []models.MonthlyStat {
	samples := monthlySamples(series)
	grand := grandMean(samples)

	out := make([]models.MonthlyStat, 0, 12)
	for m := time.January; m <= time.December; m++ {
		xs, ok := samples[m]
		if !ok || len(xs) == 0 {
			continue
		}
		st := models.MonthlyStat{
			Month:        m,
			SampleCount:  len(xs),
			MeanReturn:   stat.Mean(xs),
			MedianReturn: stat.Median(xs),
			WinRate:      winRate(xs),
			StdDev:       stat.StdDev(xs),
			MinReturn:    stat.Min(xs),
			MaxReturn:    stat.Max(xs),
		}
		_, st.PValueZero = stat.TTestOneSample(xs, 0)
		_, st.PValueVsMean = stat.TTestOneSample(xs, grand)
		if st.StdDev > 0 {
			st.EffectSize = (st.MeanReturn - grand) / st.StdDev
		}
		st.CILow, st.CIHigh = confidenceInterval(st.MeanReturn, st.StdDev, len(xs))
		out = append(out, st)
	}
	return out
}

// QuarterlyStats buckets the same year-period aggregates by quarter.
func (a *Analyzer) QuarterlyStats(series *models.ReturnSeries) []models.PeriodStat {
	type key struct{ year, quarter int }
	agg := make(map[key]float64)
	for _, p := range series.Points {
		k := key{p.Year, p.Quarter}
		if _, ok := agg[k]; !ok {
			agg[k] = 1
		}
		agg[k] *= 1 + p.Return
	}
	byQ := make(map[int][]float64, 4)
	for k, v := range agg {
		byQ[k.quarter] = append(byQ[k.quarter], v-1)
	}

	out := make([]models.PeriodStat, 0, 4)
	for q := 1; q <= 4; q++ {
		xs := byQ[q]
		if len(xs) == 0 {
			continue
		}
		out = append(out, periodStat(fmt.Sprintf("Q%d", q), xs))
	}
	return out
}

// WeekdayStats buckets raw daily returns by weekday. Unlike the monthly
// and quarterly views these are per-session, not per-year aggregates.
func (a *Analyzer) WeekdayStats(series *models.ReturnSeries) []models.PeriodStat {
	byDay := make(map[time.Weekday][]float64, 5)
	for _, p := range series.Points {
		byDay[p.Weekday] = append(byDay[p.Weekday], p.Return)
	}

	out := make([]models.PeriodStat, 0, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		xs := byDay[d]
		if len(xs) == 0 {
			continue
		}
		out = append(out, periodStat(d.String(), xs))
	}
	return out
}

func periodStat(label string, xs []float64) models.PeriodStat {
	ps := models.PeriodStat{
		Period:      label,
		SampleCount: len(xs),
		MeanReturn:  stat.Mean(xs),
		WinRate:     winRate(xs),
		StdDev:      stat.StdDev(xs),
	}
	_, ps.PValueZero = stat.TTestOneSample(xs, 0)
	return ps
}

func winRate(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	wins := 0
	for _, x := range xs {
		if x > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(xs))
}

func grandMean(samples map[time.Month][]float64) float64 {
	var all []float64
	for _, xs := range samples {
		all = append(all, xs...)
	}
	return stat.Mean(all)
}

// confidenceInterval is the 95% interval around the mean; small samples
// get widened bounds rather than being dropped.
func confidenceInterval(mean, sd float64, n int) (lo, hi float64) {
	if n < 2 {
		return mean, mean
	}
	se := sd / math.Sqrt(float64(n))
	half := 1.96 * se
	if n < 10 {
		half *= 1.3
	}
	return mean - half, mean + half
}
