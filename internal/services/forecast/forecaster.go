package forecast

import (
	"fmt"
	"math"
	"time"

	"SeasonEdge/internal/domain/models"
)

const (
	cvInitial = 252
	cvStep    = 63

	maxChangepoints  = 5
	changepointRange = 0.8 // breaks in the last 20% of history are ignored

	z80 = 1.2816
	z95 = 1.9600
)

type Forecaster struct{}

func NewForecaster() *Forecaster { return &Forecaster{} }

// Forecast projects the price index horizonDays sessions ahead. The
// series must cover at least twice the horizon; shorter histories yield
// a soft ErrForecastUnavailable.
func (f *Forecaster) Forecast(series *models.ReturnSeries, horizonDays int, breaks []models.StructuralBreak) (*models.ForecastResult, error) {
	n := series.Len()
	if n < 2*horizonDays {
		return nil, fmt.Errorf("%w: %d sessions of history for a %d-day horizon", models.ErrForecastUnavailable, n, horizonDays)
	}

	y := logPrice(series)
	model := &harmonicModel{changepoints: changepointsFrom(series, breaks)}
	if err := model.fit(y); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrForecastUnavailable, err)
	}

	res := &models.ForecastResult{HorizonDays: horizonDays}
	d := series.Points[n-1].Date
	for h := 1; h <= horizonDays; h++ {
		d = nextBusinessDay(d)
		logP := model.predict(float64(n - 1 + h))
		sd := model.residualSD * math.Sqrt(float64(h))

		res.Dates = append(res.Dates, d)
		res.Point = append(res.Point, math.Exp(logP))
		res.Lower80 = append(res.Lower80, math.Exp(logP-z80*sd))
		res.Upper80 = append(res.Upper80, math.Exp(logP+z80*sd))
		res.Lower95 = append(res.Lower95, math.Exp(logP-z95*sd))
		res.Upper95 = append(res.Upper95, math.Exp(logP+z95*sd))
	}

	res.Accuracy = f.crossValidate(y, series, breaks, horizonDays)
	return res, nil
}

// crossValidate runs rolling-origin evaluation: train on an expanding
// window, score the next horizon, advance the origin by a fixed step.
func (f *Forecaster) crossValidate(y []float64, series *models.ReturnSeries, breaks []models.StructuralBreak, horizon int) models.Accuracy {
	var acc models.Accuracy
	var apeSum, aeSum float64
	var scored, directionHits int

	for origin := cvInitial; origin+horizon <= len(y); origin += cvStep {
		model := &harmonicModel{changepoints: changepointsBefore(series, breaks, origin)}
		if err := model.fit(y[:origin]); err != nil {
			continue
		}
		acc.Folds++

		predEnd := model.predict(float64(origin + horizon - 1))
		actualEnd := y[origin+horizon-1]
		lastTrain := y[origin-1]
		if (predEnd-lastTrain)*(actualEnd-lastTrain) > 0 {
			directionHits++
		}

		for h := 0; h < horizon; h++ {
			pred := math.Exp(model.predict(float64(origin + h)))
			actual := math.Exp(y[origin+h])
			ae := math.Abs(pred - actual)
			aeSum += ae
			if actual != 0 {
				apeSum += ae / math.Abs(actual)
				scored++
			}
		}
	}

	if scored > 0 {
		acc.MAPE = apeSum / float64(scored)
		acc.MAE = aeSum / float64(scored)
	}
	if acc.Folds > 0 {
		acc.Directional = float64(directionHits) / float64(acc.Folds)
	}
	return acc
}

// changepointsFrom converts detected structural breaks into trend
// changepoint indices, capped and restricted to the changepoint range so
// the extrapolated slope is not dominated by the most recent shift.
func changepointsFrom(series *models.ReturnSeries, breaks []models.StructuralBreak) []int {
	return changepointsBefore(series, breaks, int(changepointRange*float64(series.Len())))
}

func changepointsBefore(series *models.ReturnSeries, breaks []models.StructuralBreak, limit int) []int {
	idx := make(map[int64]int, series.Len())
	for i, p := range series.Points {
		idx[p.Date.Unix()] = i
	}
	var out []int
	for _, b := range breaks {
		i, ok := idx[b.Date.Unix()]
		if !ok || i >= limit {
			continue
		}
		out = append(out, i)
		if len(out) == maxChangepoints {
			break
		}
	}
	return out
}

func logPrice(series *models.ReturnSeries) []float64 {
	out := make([]float64, series.Len())
	for i, p := range series.Points {
		v := 1 + p.CumReturn
		if v <= 0 {
			v = 1e-9
		}
		out[i] = math.Log(v)
	}
	return out
}

func nextBusinessDay(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
