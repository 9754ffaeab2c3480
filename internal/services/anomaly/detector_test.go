package anomaly

import (
	"math/rand"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/features"
)

func calmSeries(n int, lastReturn float64) *models.ReturnSeries {
	rng := rand.New(rand.NewSource(3))
	var points []models.ReturnPoint
	d := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	cum := 1.0
	for len(points) < n {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		r := rng.NormFloat64() * 0.002
		if len(points) == n-1 {
			r = lastReturn
		}
		cum *= 1 + r
		points = append(points, models.ReturnPoint{
			Date: d, Return: r, CumReturn: cum - 1,
			Year: d.Year(), Month: d.Month(),
			Quarter: (int(d.Month())-1)/3 + 1, Weekday: d.Weekday(),
		})
		d = d.AddDate(0, 0, 1)
	}
	return &models.ReturnSeries{Symbol: "TEST", Points: points}
}

func TestDetectFlagsCrashDay(t *testing.T) {
	s := calmSeries(400, -0.15) // a 15% single-day drop in a 0.2% vol series
	m := features.NewExtractor().Extract(s)

	findings, err := NewDetector().Detect(m, s)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.Category != models.CategoryAnomaly {
		t.Fatalf("category = %v", f.Category)
	}
	if f.Confidence < 0.5 || f.Confidence > 0.95 {
		t.Fatalf("confidence = %v outside [0.5, 0.95]", f.Confidence)
	}
	if f.Metrics["z_score"] > -5 {
		t.Fatalf("z-score = %v, want strongly negative", f.Metrics["z_score"])
	}
}

func TestDetectQuietOnCalmSeries(t *testing.T) {
	s := calmSeries(400, 0.001)
	m := features.NewExtractor().Extract(s)

	findings, err := NewDetector().Detect(m, s)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("calm latest session flagged: %+v", findings)
	}
}

func TestDetectQuietOnFlatSeries(t *testing.T) {
	var points []models.ReturnPoint
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for len(points) < 200 {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		points = append(points, models.ReturnPoint{
			Date: d, Return: 0, CumReturn: 0,
			Year: d.Year(), Month: d.Month(),
			Quarter: (int(d.Month())-1)/3 + 1, Weekday: d.Weekday(),
		})
		d = d.AddDate(0, 0, 1)
	}
	s := &models.ReturnSeries{Symbol: "TEST", Points: points}
	m := features.NewExtractor().Extract(s)

	findings, err := NewDetector().Detect(m, s)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("flat series flagged: %+v", findings)
	}
}

func TestMonthZUsesCalendarMonthHistory(t *testing.T) {
	// December always rallies 0.3%/day, except the final year which crashes
	var points []models.ReturnPoint
	cum := 1.0
	for y := 2018; y <= 2023; y++ {
		d := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		for d.Year() == y {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				r := 0.0
				if d.Month() == time.December {
					r = 0.003
					if y == 2023 {
						r = -0.005
					}
				}
				cum *= 1 + r
				points = append(points, models.ReturnPoint{
					Date: d, Return: r, CumReturn: cum - 1,
					Year: d.Year(), Month: d.Month(),
					Quarter: (int(d.Month())-1)/3 + 1, Weekday: d.Weekday(),
				})
			}
			d = d.AddDate(0, 0, 1)
		}
	}
	s := &models.ReturnSeries{Symbol: "TEST", Points: points}

	z := monthZ(s)
	if z >= 0 {
		t.Fatalf("month z = %v, want negative for a December far below its history", z)
	}
}

func TestIsolationScoreSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	rows := make([][]float64, 500)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}
	f := newIsolationForest()
	f.fit(rows)

	inlier := f.score([]float64{0, 0})
	outlier := f.score([]float64{10, -10})
	if outlier <= inlier {
		t.Fatalf("outlier score %v not above inlier score %v", outlier, inlier)
	}
	if outlier < 0.6 {
		t.Fatalf("extreme point score = %v, want > 0.6", outlier)
	}
}
