package models

import "time"

// Candle represents one daily OHLCV observation. Immutable once ingested.
type Candle struct {
	Date   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DateRange is the inclusive span of an analysis request.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ReturnPoint is one element of a prepared return series.
type ReturnPoint struct {
	Date       time.Time
	Return     float64 // simple daily return (C_t - C_{t-1}) / C_{t-1}
	CumReturn  float64 // compounded since series start
	RollVol    float64 // trailing 20-session stddev of daily returns; 0 during warm-up
	Year       int
	Month      time.Month
	Quarter    int // 1..4
	Weekday    time.Weekday
	MonthStart bool
	MonthEnd   bool
}

// ReturnSeries is the canonical prepared series consumed by every analysis
// module. Length is always len(candles)-1. Read-only downstream.
type ReturnSeries struct {
	Symbol string
	Points []ReturnPoint
}

func (s *ReturnSeries) Len() int { return len(s.Points) }

// Returns extracts the daily return column.
func (s *ReturnSeries) Returns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Return
	}
	return out
}

// CumReturns extracts the cumulative return column.
func (s *ReturnSeries) CumReturns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.CumReturn
	}
	return out
}

// Range reports the first and last dates of the series.
func (s *ReturnSeries) Range() DateRange {
	if len(s.Points) == 0 {
		return DateRange{}
	}
	return DateRange{From: s.Points[0].Date, To: s.Points[len(s.Points)-1].Date}
}
