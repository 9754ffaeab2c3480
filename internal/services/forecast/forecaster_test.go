package forecast

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

func buildSeries(n int, ret func(i int) float64) *models.ReturnSeries {
	var points []models.ReturnPoint
	d := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	cum := 1.0
	for len(points) < n {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		r := ret(len(points))
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

func TestForecastNeedsTwiceTheHorizon(t *testing.T) {
	s := buildSeries(100, func(i int) float64 { return 0.001 })
	_, err := NewForecaster().Forecast(s, 60, nil)
	if !errors.Is(err, models.ErrForecastUnavailable) {
		t.Fatalf("want ErrForecastUnavailable, got %v", err)
	}
	if !models.IsSoft(err) {
		t.Fatal("forecast failure must be soft")
	}
}

func TestForecastShapeAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	s := buildSeries(600, func(i int) float64 { return 0.0005 + rng.NormFloat64()*0.005 })

	res, err := NewForecaster().Forecast(s, 30, nil)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.HorizonDays != 30 || len(res.Point) != 30 || len(res.Dates) != 30 {
		t.Fatalf("shape: horizon=%d points=%d dates=%d", res.HorizonDays, len(res.Point), len(res.Dates))
	}

	last := s.Points[s.Len()-1].Date
	for i, d := range res.Dates {
		if !d.After(last) {
			t.Fatalf("forecast date %v not after series end %v", d, last)
		}
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			t.Fatalf("forecast date %v falls on a weekend", d)
		}
		if res.Lower95[i] > res.Lower80[i] || res.Lower80[i] > res.Point[i] ||
			res.Point[i] > res.Upper80[i] || res.Upper80[i] > res.Upper95[i] {
			t.Fatalf("bounds disordered at step %d", i)
		}
		last = d
	}

	// uncertainty must widen with the horizon
	first := res.Upper95[0] - res.Lower95[0]
	final := res.Upper95[29] - res.Lower95[29]
	if final <= first {
		t.Fatalf("bounds did not widen: %v -> %v", first, final)
	}
}

func TestForecastTracksDeterministicTrend(t *testing.T) {
	s := buildSeries(600, func(i int) float64 { return 0.001 })
	res, err := NewForecaster().Forecast(s, 20, nil)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	lastPrice := 1 + s.Points[s.Len()-1].CumReturn
	want := lastPrice * math.Pow(1.001, 20)
	got := res.Point[19]
	if math.Abs(got-want)/want > 0.02 {
		t.Fatalf("20-day point = %v, want ~%v", got, want)
	}

	if res.Accuracy.Folds == 0 {
		t.Fatal("cross-validation produced no folds on 600 sessions")
	}
	if res.Accuracy.MAPE > 0.05 {
		t.Fatalf("MAPE = %v on a noiseless trend", res.Accuracy.MAPE)
	}
	if res.Accuracy.Directional < 0.9 {
		t.Fatalf("directional accuracy = %v on a monotone trend", res.Accuracy.Directional)
	}
}

func TestChangepointsRespectCapAndRange(t *testing.T) {
	s := buildSeries(500, func(i int) float64 { return 0.001 })
	var breaks []models.StructuralBreak
	for i := 50; i < 500; i += 50 {
		breaks = append(breaks, models.StructuralBreak{Date: s.Points[i].Date, Type: models.BreakMeanShift, Magnitude: 3})
	}

	cps := changepointsFrom(s, breaks)
	if len(cps) > maxChangepoints {
		t.Fatalf("%d changepoints, cap is %d", len(cps), maxChangepoints)
	}
	limit := int(changepointRange * float64(s.Len()))
	for _, cp := range cps {
		if cp >= limit {
			t.Fatalf("changepoint %d beyond the %d range limit", cp, limit)
		}
	}
}
