package features

import (
	"math"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

func syntheticSeries(n int) *models.ReturnSeries {
	points := make([]models.ReturnPoint, 0, n)
	d := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	cum := 1.0
	for i := 0; i < n; i++ {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		r := 0.001 * math.Sin(float64(i)/7)
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

func TestExtractShape(t *testing.T) {
	s := syntheticSeries(200)
	m := NewExtractor().Extract(s)

	if m.SchemaVersion != SchemaVersion {
		t.Fatalf("schema = %q", m.SchemaVersion)
	}
	if m.Len() != 200-warmup {
		t.Fatalf("rows = %d, want %d", m.Len(), 200-warmup)
	}
	if len(m.Dates) != m.Len() {
		t.Fatalf("dates/rows mismatch: %d vs %d", len(m.Dates), m.Len())
	}
	want := len(featureNames())
	for i, row := range m.Rows {
		if len(row) != want {
			t.Fatalf("row %d has %d values, want %d", i, len(row), want)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d feature %s is %v", i, m.Names[j], v)
			}
		}
	}
}

func TestExtractAlignment(t *testing.T) {
	s := syntheticSeries(100)
	m := NewExtractor().Extract(s)

	// the first emitted row corresponds to series point warmup
	if !m.Dates[0].Equal(s.Points[warmup].Date) {
		t.Fatalf("first row date = %v, want %v", m.Dates[0], s.Points[warmup].Date)
	}
	lag1 := m.Column("ret_lag_1")
	if math.Abs(lag1[0]-s.Points[warmup-1].Return) > 1e-12 {
		t.Fatalf("ret_lag_1 misaligned: %v vs %v", lag1[0], s.Points[warmup-1].Return)
	}
}

func TestCalendarOneHots(t *testing.T) {
	s := syntheticSeries(150)
	m := NewExtractor().Extract(s)

	for i, row := range m.Rows {
		monthSum, daySum := 0.0, 0.0
		for j, name := range m.Names {
			switch {
			case len(name) > 6 && name[:6] == "month_" && name != "month_start" && name != "month_end":
				monthSum += row[j]
			case len(name) > 8 && name[:8] == "weekday_":
				daySum += row[j]
			}
		}
		if monthSum != 1 {
			t.Fatalf("row %d month one-hots sum to %v", i, monthSum)
		}
		if daySum != 1 {
			t.Fatalf("row %d weekday one-hots sum to %v", i, daySum)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	s := syntheticSeries(300)
	m := NewExtractor().Extract(s)
	for _, v := range m.Column("rsi_14") {
		if v < 0 || v > 100 {
			t.Fatalf("rsi = %v outside [0, 100]", v)
		}
	}
}
