// Package regime labels each session with a volatility bucket and a
// trend direction, run-length encoded into segments.
package regime

import (
	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

const (
	volQuantile    = 0.7
	trendWindow    = 20
	trendThreshold = 0.001 // mean daily return cut for bull/bear
)

type Classifier struct {
	MinRun int
}

func NewClassifier(minRun int) *Classifier {
	if minRun < 1 {
		minRun = 10
	}
	return &Classifier{MinRun: minRun}
}

// Classify produces two parallel segment streams: volatility regimes cut
// at the 70th percentile of rolling vol, and trend regimes from the
// 20-session mean return with hysteresis so one-day whipsaws don't flip
// the label.
func (c *Classifier) Classify(series *models.ReturnSeries) []models.RegimeSegment {
	n := series.Len()
	if n == 0 {
		return nil
	}

	out := c.encode(series, "volatility", c.volLabels(series))
	out = append(out, c.encode(series, "trend", c.trendLabels(series))...)
	return out
}

func (c *Classifier) volLabels(series *models.ReturnSeries) []models.RegimeType {
	var vols []float64
	for _, p := range series.Points {
		if p.RollVol > 0 {
			vols = append(vols, p.RollVol)
		}
	}
	cut := stat.Quantile(vols, volQuantile)

	labels := make([]models.RegimeType, series.Len())
	for i, p := range series.Points {
		if p.RollVol > cut {
			labels[i] = models.RegimeHighVol
		} else {
			labels[i] = models.RegimeLowVol
		}
	}
	return labels
}

func (c *Classifier) trendLabels(series *models.ReturnSeries) []models.RegimeType {
	returns := series.Returns()
	labels := make([]models.RegimeType, len(returns))

	current := models.RegimeNeutral
	pending := current
	run := 0
	for i := range returns {
		lo := i - trendWindow + 1
		if lo < 0 {
			lo = 0
		}
		m := stat.Mean(returns[lo : i+1])

		var raw models.RegimeType
		switch {
		case m > trendThreshold:
			raw = models.RegimeBull
		case m < -trendThreshold:
			raw = models.RegimeBear
		default:
			raw = models.RegimeNeutral
		}

		// hysteresis: a new label must persist MinRun sessions to take over
		if raw == current {
			pending, run = current, 0
		} else if raw == pending {
			run++
			if run >= c.MinRun {
				current, run = pending, 0
			}
		} else {
			pending, run = raw, 1
		}
		labels[i] = current
	}
	return labels
}

func (c *Classifier) encode(series *models.ReturnSeries, dimension string, labels []models.RegimeType) []models.RegimeSegment {
	var out []models.RegimeSegment
	start := 0
	for i := 1; i <= len(labels); i++ {
		if i < len(labels) && labels[i] == labels[start] {
			continue
		}
		out = append(out, models.RegimeSegment{
			Type:      labels[start],
			Dimension: dimension,
			Start:     series.Points[start].Date,
			End:       series.Points[i-1].Date,
			Sessions:  i - start,
		})
		start = i
	}
	return out
}
