package patterns

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/domain/service"
)

// minTrainingRows is the row floor below which the model is skipped and
// the run continues on statistical findings alone.
const minTrainingRows = 100

const maxPromoted = 5

type Detector struct {
	newModel func() service.PatternModel
}

func NewDetector() *Detector {
	return &Detector{newModel: func() service.PatternModel { return NewForest() }}
}

// NewDetectorWith injects an alternative model family.
func NewDetectorWith(factory func() service.PatternModel) *Detector {
	return &Detector{newModel: factory}
}

// Detect trains on the chronological first 70% of the matrix, validates
// on the remaining 30%, and promotes the calendar features the model
// leans on. Failure is soft: callers degrade to statistical findings.
func (d *Detector) Detect(matrix *models.FeatureMatrix, series *models.ReturnSeries) ([]models.PatternFinding, error) {
	rows, labels := labelled(matrix, series)
	if len(rows) < minTrainingRows {
		return nil, fmt.Errorf("%w: %d training rows, need %d", models.ErrModelTraining, len(rows), minTrainingRows)
	}

	split := len(rows) * 7 / 10
	model := d.newModel()
	if err := model.Fit(rows[:split], labels[:split]); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelTraining, err)
	}

	correct := 0
	for i := split; i < len(rows); i++ {
		pred := 0
		if model.Predict(rows[i]) > 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(rows)-split)

	return promote(matrix.Names, model.FeatureImportances(), accuracy), nil
}

// labelled aligns each feature row with the NEXT day's return sign, so
// the final matrix row (which has no next day) is dropped.
func labelled(matrix *models.FeatureMatrix, series *models.ReturnSeries) ([][]float64, []int) {
	next := make(map[int64]float64, series.Len())
	for i := 0; i+1 < series.Len(); i++ {
		next[series.Points[i].Date.Unix()] = series.Points[i+1].Return
	}

	var rows [][]float64
	var labels []int
	for i, dt := range matrix.Dates {
		r, ok := next[dt.Unix()]
		if !ok {
			continue
		}
		label := 0
		if r > 0 {
			label = 1
		}
		rows = append(rows, matrix.Rows[i])
		labels = append(labels, label)
	}
	return rows, labels
}

type ranked struct {
	name       string
	importance float64
}

// promote turns the model's calendar-feature importances into findings.
// Non-calendar features (vol, momentum) inform the model but are not
// seasonal claims, so they never surface here.
func promote(names []string, importances []float64, accuracy float64) []models.PatternFinding {
	var cal []ranked
	for i, name := range names {
		if !isCalendarFeature(name) || importances[i] <= 0 {
			continue
		}
		cal = append(cal, ranked{name, importances[i]})
	}
	sort.Slice(cal, func(i, j int) bool { return cal[i].importance > cal[j].importance })
	if len(cal) > maxPromoted {
		cal = cal[:maxPromoted]
	}

	maxImp := 0.0
	for _, c := range cal {
		if c.importance > maxImp {
			maxImp = c.importance
		}
	}

	out := make([]models.PatternFinding, 0, len(cal))
	for _, c := range cal {
		norm := 0.0
		if maxImp > 0 {
			norm = c.importance / maxImp
		}
		conf := math.Min(0.95, math.Max(0, 0.6*accuracy+0.4*norm))
		out = append(out, models.PatternFinding{
			Label:    "model signal: " + humanize(c.name),
			Category: models.CategorySeasonal,
			Description: fmt.Sprintf(
				"model ranks %s among its top predictors (importance %.1f%%, validation accuracy %.0f%%)",
				humanize(c.name), c.importance*100, accuracy*100),
			Confidence: conf,
			Metrics: map[string]float64{
				"importance":          c.importance,
				"validation_accuracy": accuracy,
			},
		})
	}
	return out
}

func isCalendarFeature(name string) bool {
	return strings.HasPrefix(name, "month_") || strings.HasPrefix(name, "weekday_")
}

func humanize(name string) string {
	switch name {
	case "month_start":
		return "month-start sessions"
	case "month_end":
		return "month-end sessions"
	}
	if n, ok := trailingIndex(name, "month_"); ok {
		months := []string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"}
		if n >= 1 && n <= 12 {
			return months[n-1]
		}
	}
	if n, ok := trailingIndex(name, "weekday_"); ok {
		days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
		if n >= 1 && n <= 5 {
			return days[n-1] + " sessions"
		}
	}
	return name
}

func trailingIndex(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n := 0
	for _, r := range name[len(prefix):] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
