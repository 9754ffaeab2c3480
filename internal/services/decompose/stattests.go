package decompose

import (
	"math"

	"SeasonEdge/internal/services/stat"
)

// adfTest runs an augmented Dickey-Fuller regression with one lagged
// difference and an intercept, mapping the statistic to a p-value by
// interpolating the standard critical-value table.
func adfTest(y []float64) (statistic, pValue float64) {
	n := len(y)
	if n < 20 {
		return 0, 1
	}

	// dy_t = a + b*y_{t-1} + g*dy_{t-1} + e
	var x [][]float64
	var resp []float64
	for t := 2; t < n; t++ {
		x = append(x, []float64{1, y[t-1], y[t-1] - y[t-2]})
		resp = append(resp, y[t]-y[t-1])
	}
	beta, err := stat.OLS(x, resp)
	if err != nil {
		return 0, 1
	}

	// residual variance and the standard error of b
	var sse float64
	for i, row := range x {
		pred := beta[0] + beta[1]*row[1] + beta[2]*row[2]
		d := resp[i] - pred
		sse += d * d
	}
	dof := float64(len(resp) - 3)
	if dof <= 0 {
		return 0, 1
	}
	sigma2 := sse / dof

	// var(b) from the (1,1) element of sigma2 * (X'X)^-1, obtained by
	// solving X'X v = e1 for the relevant column
	var syy, sy float64
	for _, row := range x {
		sy += row[1]
		syy += row[1] * row[1]
	}
	m := float64(len(x))
	varY := syy/m - (sy/m)*(sy/m)
	if varY <= 0 {
		return 0, 1
	}
	seB := math.Sqrt(sigma2 / (m * varY))
	if seB == 0 {
		return 0, 1
	}

	statistic = beta[1] / seB
	return statistic, adfPValue(statistic)
}

// adfPValue interpolates the MacKinnon critical values for the
// constant-only case: 1% -3.43, 5% -2.86, 10% -2.57.
func adfPValue(t float64) float64 {
	type pt struct{ stat, p float64 }
	table := []pt{{-3.96, 0.001}, {-3.43, 0.01}, {-2.86, 0.05}, {-2.57, 0.10}, {-1.94, 0.30}, {-0.5, 0.90}}
	if t <= table[0].stat {
		return table[0].p
	}
	if t >= table[len(table)-1].stat {
		return 0.95
	}
	for i := 1; i < len(table); i++ {
		if t <= table[i].stat {
			lo, hi := table[i-1], table[i]
			frac := (t - lo.stat) / (hi.stat - lo.stat)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return 0.95
}

// ljungBox tests for serial correlation up to the given lag.
func ljungBox(xs []float64, lags int) (statistic, pValue float64) {
	n := len(xs)
	if n <= lags+1 {
		return 0, 1
	}
	mean := stat.Mean(xs)
	var denom float64
	for _, v := range xs {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return 0, 1
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		var num float64
		for t := k; t < n; t++ {
			num += (xs[t] - mean) * (xs[t-k] - mean)
		}
		rk := num / denom
		q += rk * rk / float64(n-k)
	}
	statistic = float64(n) * (float64(n) + 2) * q
	return statistic, stat.ChiSquareSF(statistic, float64(lags))
}
