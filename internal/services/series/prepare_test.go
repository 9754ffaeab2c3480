package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

func makeCandles(n int, close func(i int) float64) []models.Candle {
	out := make([]models.Candle, 0, n)
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		c := close(i)
		out = append(out, models.Candle{
			Date: d, Symbol: "TEST",
			Open: c, High: c * 1.01, Low: c * 0.99, Close: c, Volume: 1000,
		})
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func TestPrepareDerivesReturns(t *testing.T) {
	candles := makeCandles(60, func(i int) float64 { return 100 + float64(i) })
	s, err := NewPreparer(0).Prepare("TEST", candles)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if s.Len() != 59 {
		t.Fatalf("len = %d, want 59", s.Len())
	}
	want := 1.0 / 100.0
	if got := s.Points[0].Return; math.Abs(got-want) > 1e-12 {
		t.Fatalf("first return = %v, want %v", got, want)
	}
	last := s.Points[s.Len()-1]
	wantCum := 159.0/100.0 - 1
	if math.Abs(last.CumReturn-wantCum) > 1e-9 {
		t.Fatalf("cum return = %v, want %v", last.CumReturn, wantCum)
	}
	if last.RollVol <= 0 {
		t.Fatalf("rolling vol not filled after warm-up")
	}
	if s.Points[0].RollVol != 0 {
		t.Fatalf("rolling vol set during warm-up")
	}
}

func TestPrepareExactFloor(t *testing.T) {
	if _, err := NewPreparer(0).Prepare("TEST", makeCandles(50, func(i int) float64 { return 100 })); err != nil {
		t.Fatalf("exactly %d observations should succeed, got %v", HardFloor, err)
	}

	_, err := NewPreparer(0).Prepare("TEST", makeCandles(49, func(i int) float64 { return 100 }))
	var ide *models.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
	if ide.Got != 49 || ide.Min != HardFloor {
		t.Fatalf("error carries got=%d min=%d", ide.Got, ide.Min)
	}
}

func TestPrepareForwardFillsShortGaps(t *testing.T) {
	candles := makeCandles(60, func(i int) float64 {
		if i >= 10 && i < 13 { // three missing sessions
			return 0
		}
		return 100
	})
	s, err := NewPreparer(0).Prepare("TEST", candles)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if s.Len() != 59 {
		t.Fatalf("filled series len = %d, want 59", s.Len())
	}
	for _, p := range s.Points {
		if p.Return != 0 {
			t.Fatalf("flat filled series produced nonzero return at %s", p.Date)
		}
	}
}

func TestPrepareDropsLongGaps(t *testing.T) {
	candles := makeCandles(60, func(i int) float64 {
		if i >= 10 && i < 15 { // five missing sessions, beyond the fill limit
			return 0
		}
		return 100
	})
	s, err := NewPreparer(0).Prepare("TEST", candles)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if s.Len() != 54 {
		t.Fatalf("series len = %d, want 54 (5 dropped sessions)", s.Len())
	}
}

func TestPrepareRejectsDisorder(t *testing.T) {
	candles := makeCandles(60, func(i int) float64 { return 100 })
	candles[5], candles[6] = candles[6], candles[5]
	if _, err := NewPreparer(0).Prepare("TEST", candles); err == nil {
		t.Fatal("out-of-order candles accepted")
	}

	candles = makeCandles(60, func(i int) float64 { return 100 })
	candles[3].Low = -1
	if _, err := NewPreparer(0).Prepare("TEST", candles); err == nil {
		t.Fatal("negative field accepted")
	}
}

func TestPrepareCalendarAnnotations(t *testing.T) {
	candles := makeCandles(80, func(i int) float64 { return 100 + float64(i)*0.1 })
	s, err := NewPreparer(0).Prepare("TEST", candles)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sawStart := false
	for _, p := range s.Points {
		if p.Quarter != (int(p.Month)-1)/3+1 {
			t.Fatalf("quarter mismatch at %s", p.Date)
		}
		if p.MonthStart {
			sawStart = true
		}
	}
	if !sawStart {
		t.Fatal("no month boundary detected across 80 sessions")
	}
}
