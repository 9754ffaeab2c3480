package anomaly

import (
	"fmt"
	"math"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

// scoreQuantile is the cut above which an observation counts as anomalous.
const scoreQuantile = 0.95

type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Detect fits an isolation forest over the whole feature matrix and
// reports the latest observation when its score strictly exceeds the
// historical 95th percentile. At most one finding per run.
func (d *Detector) Detect(matrix *models.FeatureMatrix, series *models.ReturnSeries) ([]models.PatternFinding, error) {
	if matrix.Len() < 2 {
		return nil, nil
	}
	// a series with no return dispersion has no distribution to deviate from
	if stat.StdDev(series.Returns()) == 0 {
		return nil, nil
	}

	forest := newIsolationForest()
	forest.fit(matrix.Rows)

	scores := make([]float64, matrix.Len())
	for i, row := range matrix.Rows {
		scores[i] = forest.score(row)
	}
	if stat.StdDev(scores) < 1e-9 {
		return nil, nil
	}
	cut := stat.Quantile(scores, scoreQuantile)

	last := matrix.Len() - 1
	latest := scores[last]
	if latest <= cut {
		return nil, nil
	}

	z := monthZ(series)
	conf := math.Min(0.95, 0.5+math.Abs(z)/10)

	return []models.PatternFinding{{
		Label:    "anomalous recent behavior",
		Category: models.CategoryAnomaly,
		Description: fmt.Sprintf(
			"latest session on %s scores %.3f against a %.3f anomaly cut (return z-score %+.1f)",
			matrix.Dates[last].Format("2006-01-02"), latest, cut, z),
		Confidence: conf,
		Metrics: map[string]float64{
			"score":   latest,
			"cut":     cut,
			"z_score": z,
		},
	}}, nil
}

// monthZ sizes the finding: the current month-to-date compounded return
// against the same calendar month's history in earlier years. Series too
// short to have that history fall back to the latest daily return against
// the whole-series distribution.
func monthZ(series *models.ReturnSeries) float64 {
	pts := series.Points
	latest := pts[len(pts)-1]

	type key struct {
		year  int
		month time.Month
	}
	agg := make(map[key]float64)
	var order []key
	for _, p := range pts {
		k := key{p.Year, p.Month}
		if _, ok := agg[k]; !ok {
			agg[k] = 1
			order = append(order, k)
		}
		agg[k] *= 1 + p.Return
	}

	cur := key{latest.Year, latest.Month}
	var hist []float64
	for _, k := range order {
		if k.month != latest.Month || k == cur {
			continue
		}
		hist = append(hist, agg[k]-1)
	}
	if sd := stat.StdDev(hist); len(hist) >= 2 && sd > 0 {
		return (agg[cur] - 1 - stat.Mean(hist)) / sd
	}

	returns := series.Returns()
	if sd := stat.StdDev(returns); sd > 0 {
		return (returns[len(returns)-1] - stat.Mean(returns)) / sd
	}
	return 0
}
