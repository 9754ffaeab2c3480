// Package forecast fits a harmonic regression (piecewise linear trend
// plus Fourier seasonality) and projects it forward with widening
// uncertainty bounds.
package forecast

import (
	"math"

	"SeasonEdge/internal/services/stat"
)

// Fourier terms per cycle: monthly, quarterly, annual trading periods.
var harmonics = []struct {
	period float64
	order  int
}{
	{21, 3},
	{63, 2},
	{252, 4},
}

// harmonicModel is a linear model over time index t:
// intercept, base slope, one extra slope per changepoint, and
// sin/cos pairs for each configured harmonic.
type harmonicModel struct {
	changepoints []int // time indices where the trend slope may shift
	beta         []float64
	residualSD   float64
}

func (m *harmonicModel) design(t float64) []float64 {
	row := make([]float64, 0, 2+len(m.changepoints)+2*totalOrders())
	row = append(row, 1, t)
	for _, cp := range m.changepoints {
		if t > float64(cp) {
			row = append(row, t-float64(cp))
		} else {
			row = append(row, 0)
		}
	}
	for _, h := range harmonics {
		for k := 1; k <= h.order; k++ {
			w := 2 * math.Pi * float64(k) * t / h.period
			row = append(row, math.Sin(w), math.Cos(w))
		}
	}
	return row
}

func totalOrders() int {
	n := 0
	for _, h := range harmonics {
		n += h.order
	}
	return n
}

// fit estimates the coefficients over y indexed 0..len(y)-1.
func (m *harmonicModel) fit(y []float64) error {
	x := make([][]float64, len(y))
	for t := range y {
		x[t] = m.design(float64(t))
	}
	beta, err := stat.OLS(x, y)
	if err != nil {
		return err
	}
	m.beta = beta

	var sse float64
	for t, row := range x {
		d := y[t] - dot(row, beta)
		sse += d * d
	}
	dof := len(y) - len(beta)
	if dof < 1 {
		dof = 1
	}
	m.residualSD = math.Sqrt(sse / float64(dof))
	return nil
}

func (m *harmonicModel) predict(t float64) float64 {
	return dot(m.design(t), m.beta)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
