package series

import (
	"fmt"
	"math"

	"SeasonEdge/internal/domain/models"
)

const (
	// HardFloor is the minimum usable observation count below which no
	// statistic is meaningful.
	HardFloor = 50

	// maxFillGap is the longest run of missing closes that forward-fill
	// will bridge.
	maxFillGap = 3

	volWindow = 20
)

// Preparer turns a raw candle sequence into the canonical ReturnSeries.
// Pure transform: no side effects beyond the returned series.
type Preparer struct {
	MinObservations int
}

func NewPreparer(minObservations int) *Preparer {
	if minObservations <= 0 {
		minObservations = HardFloor
	}
	return &Preparer{MinObservations: minObservations}
}

// Prepare validates the candles, forward-fills isolated missing closes,
// and derives daily returns with calendar annotations.
func (p *Preparer) Prepare(symbol string, candles []models.Candle) (*models.ReturnSeries, error) {
	cleaned, err := cleanCandles(candles)
	if err != nil {
		return nil, err
	}
	if len(cleaned) < p.MinObservations {
		return nil, &models.InsufficientDataError{Got: len(cleaned), Min: p.MinObservations}
	}

	points := make([]models.ReturnPoint, 0, len(cleaned)-1)
	cum := 1.0
	for i := 1; i < len(cleaned); i++ {
		prev, cur := cleaned[i-1], cleaned[i]
		r := (cur.Close - prev.Close) / prev.Close
		cum *= 1 + r

		pt := models.ReturnPoint{
			Date:      cur.Date,
			Return:    r,
			CumReturn: cum - 1,
			Year:      cur.Date.Year(),
			Month:     cur.Date.Month(),
			Quarter:   (int(cur.Date.Month())-1)/3 + 1,
			Weekday:   cur.Date.Weekday(),
		}
		pt.MonthStart = prev.Date.Month() != cur.Date.Month()
		if i+1 < len(cleaned) {
			pt.MonthEnd = cleaned[i+1].Date.Month() != cur.Date.Month()
		}
		points = append(points, pt)
	}

	fillRollingVol(points)
	return &models.ReturnSeries{Symbol: symbol, Points: points}, nil
}

// cleanCandles enforces the input invariants and bridges short runs of
// missing (non-positive) closes by carrying the last good close forward.
func cleanCandles(candles []models.Candle) ([]models.Candle, error) {
	out := make([]models.Candle, 0, len(candles))
	gap := 0
	for i, c := range candles {
		if i > 0 && !c.Date.After(candles[i-1].Date) {
			return nil, fmt.Errorf("candles out of order at %s", c.Date.Format("2006-01-02"))
		}
		if c.Close < 0 || c.Open < 0 || c.High < 0 || c.Low < 0 || c.Volume < 0 {
			return nil, fmt.Errorf("negative field at %s", c.Date.Format("2006-01-02"))
		}
		if c.Close == 0 {
			gap++
			if gap > maxFillGap || len(out) == 0 {
				continue // unbridgeable, drop the session
			}
			c.Close = out[len(out)-1].Close
		} else {
			gap = 0
		}
		out = append(out, c)
	}
	return out, nil
}

func fillRollingVol(points []models.ReturnPoint) {
	for i := range points {
		if i+1 < volWindow {
			continue
		}
		var sum, sum2 float64
		for j := i - volWindow + 1; j <= i; j++ {
			r := points[j].Return
			sum += r
			sum2 += r * r
		}
		n := float64(volWindow)
		mean := sum / n
		variance := (sum2 - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		points[i].RollVol = math.Sqrt(variance)
	}
}
