package seasonal

import (
	"math"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

// seededSeries builds five years of daily points where January always
// rallies and every other month is flat noise-free.
func seededSeries(janDaily float64, years int) *models.ReturnSeries {
	var points []models.ReturnPoint
	cum := 1.0
	for y := 0; y < years; y++ {
		d := time.Date(2018+y, 1, 1, 0, 0, 0, 0, time.UTC)
		for d.Year() == 2018+y {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				r := 0.0
				if d.Month() == time.January {
					r = janDaily
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
	return &models.ReturnSeries{Symbol: "TEST", Points: points}
}

func TestMonthlyStatsCompoundsWithinMonth(t *testing.T) {
	s := seededSeries(0.01, 5)
	stats := NewAnalyzer(0.05, 3).MonthlyStats(s)
	if len(stats) != 12 {
		t.Fatalf("months = %d, want 12", len(stats))
	}

	jan := stats[0]
	if jan.Month != time.January {
		t.Fatalf("first stat month = %v", jan.Month)
	}
	if jan.SampleCount != 5 {
		t.Fatalf("january years = %d, want 5", jan.SampleCount)
	}
	// ~21-23 trading days compounding at 1% should land near 23-26%
	if jan.MeanReturn < 0.20 || jan.MeanReturn > 0.30 {
		t.Fatalf("january mean = %v, want compounded monthly aggregate", jan.MeanReturn)
	}
	if jan.WinRate != 1 {
		t.Fatalf("january win rate = %v, want 1", jan.WinRate)
	}
	if jan.CILow > jan.MeanReturn || jan.CIHigh < jan.MeanReturn {
		t.Fatalf("confidence interval [%v, %v] excludes mean %v", jan.CILow, jan.CIHigh, jan.MeanReturn)
	}

	for _, st := range stats[1:] {
		if math.Abs(st.MeanReturn) > 1e-9 {
			t.Fatalf("%s mean = %v, want 0", st.Month, st.MeanReturn)
		}
	}
}

func TestFindingsPromoteSignificantMonths(t *testing.T) {
	a := NewAnalyzer(0.05, 3)
	stats := a.MonthlyStats(seededSeries(0.01, 5))
	findings := a.Findings(stats)

	if len(findings) != 1 {
		t.Fatalf("findings = %d, want only january", len(findings))
	}
	f := findings[0]
	if f.Category != models.CategorySeasonal {
		t.Fatalf("category = %v", f.Category)
	}
	if f.Label != "January strength" {
		t.Fatalf("label = %q", f.Label)
	}
	if f.Confidence <= 0 || f.Confidence > 0.95 {
		t.Fatalf("confidence = %v, want (0, 0.95]", f.Confidence)
	}
	if f.Metrics["p_value"] >= 0.05 {
		t.Fatalf("promoted finding with p = %v", f.Metrics["p_value"])
	}
}

func TestFindingsRespectMinYears(t *testing.T) {
	a := NewAnalyzer(0.05, 3)
	stats := a.MonthlyStats(seededSeries(0.01, 2))
	if got := a.Findings(stats); len(got) != 0 {
		t.Fatalf("2 years of history promoted %d findings, want 0", len(got))
	}
}

func TestFindingsLabelWeakness(t *testing.T) {
	a := NewAnalyzer(0.05, 3)
	stats := a.MonthlyStats(seededSeries(-0.01, 5))
	findings := a.Findings(stats)
	if len(findings) != 1 || findings[0].Label != "January weakness" {
		t.Fatalf("findings = %+v, want one January weakness", findings)
	}
}

func TestConfidenceScalesWithYears(t *testing.T) {
	few := seasonalConfidence(0.01, 3)
	many := seasonalConfidence(0.01, 10)
	if few >= many {
		t.Fatalf("confidence should grow with history: %v >= %v", few, many)
	}
	if c := seasonalConfidence(0.0001, 20); c != 0.95 {
		t.Fatalf("confidence cap = %v, want 0.95", c)
	}
}

func TestQuarterlyAndWeekdayStats(t *testing.T) {
	a := NewAnalyzer(0.05, 3)
	s := seededSeries(0.01, 4)

	qs := a.QuarterlyStats(s)
	if len(qs) != 4 {
		t.Fatalf("quarters = %d, want 4", len(qs))
	}
	if qs[0].Period != "Q1" || qs[0].MeanReturn <= qs[1].MeanReturn {
		t.Fatalf("Q1 should dominate: %+v", qs[:2])
	}

	ws := a.WeekdayStats(s)
	if len(ws) != 5 {
		t.Fatalf("weekdays = %d, want 5", len(ws))
	}
	if ws[0].Period != "Monday" {
		t.Fatalf("first weekday = %q", ws[0].Period)
	}
}

func TestPeriodFindingsPromoteQ1(t *testing.T) {
	a := NewAnalyzer(0.05, 3)
	s := seededSeries(0.01, 5)

	findings := a.PeriodFindings(a.QuarterlyStats(s), 5)
	if len(findings) != 1 {
		t.Fatalf("quarter findings = %+v, want only Q1", findings)
	}
	if findings[0].Label != "Q1 strength" {
		t.Fatalf("label = %q", findings[0].Label)
	}
	if c := findings[0].Confidence; c <= 0 || c > 0.95 {
		t.Fatalf("confidence = %v", c)
	}
}
