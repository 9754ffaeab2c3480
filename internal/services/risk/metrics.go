// Package risk computes the per-run distribution and drawdown summary.
package risk

import (
	"fmt"
	"math"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/services/stat"
)

const tradingDays = 252

var varLevels = []struct {
	name  string
	alpha float64
	z     float64
}{
	{"1", 0.01, -2.3263},
	{"5", 0.05, -1.6449},
	{"10", 0.10, -1.2816},
}

type Calculator struct {
	RiskFreeRate float64 // annualized
}

func NewCalculator(riskFreeRate float64) *Calculator {
	return &Calculator{RiskFreeRate: riskFreeRate}
}

// Compute derives annualized return/vol, Sharpe and Sortino, the deepest
// drawdown with its dates, higher moments, and VaR under both the
// historical and Cornish-Fisher estimators.
func (c *Calculator) Compute(series *models.ReturnSeries) *models.RiskMetrics {
	returns := series.Returns()
	n := len(returns)
	if n == 0 {
		return nil
	}

	mean := stat.Mean(returns)
	sd := stat.StdDev(returns)

	m := &models.RiskMetrics{
		AnnualReturn:     math.Pow(1+mean, tradingDays) - 1,
		AnnualVolatility: sd * math.Sqrt(tradingDays),
		Skewness:         stat.Skewness(returns),
		Kurtosis:         stat.ExcessKurtosis(returns),
		VaR:              make(map[string]float64, 2*len(varLevels)),
	}

	excess := m.AnnualReturn - c.RiskFreeRate
	if m.AnnualVolatility > 0 {
		m.Sharpe = excess / m.AnnualVolatility
	}
	if dd := downsideDeviation(returns) * math.Sqrt(tradingDays); dd > 0 {
		m.Sortino = excess / dd
	}

	m.MaxDrawdown, m.DrawdownStart, m.DrawdownEnd = maxDrawdown(series)

	for _, lvl := range varLevels {
		m.VaR["hist_"+lvl.name] = stat.Quantile(returns, lvl.alpha)
		m.VaR["cf_"+lvl.name] = mean + cornishFisherZ(lvl.z, m.Skewness, m.Kurtosis)*sd
	}
	return m
}

// Findings surfaces risk observations worth flagging alongside the
// seasonal patterns.
func (c *Calculator) Findings(m *models.RiskMetrics) []models.PatternFinding {
	if m == nil {
		return nil
	}
	var out []models.PatternFinding
	if m.MaxDrawdown < -0.3 {
		out = append(out, models.PatternFinding{
			Label:    "deep historical drawdown",
			Category: models.CategoryRisk,
			Description: fmt.Sprintf(
				"maximum drawdown of %.1f%% between %s and %s",
				m.MaxDrawdown*100, m.DrawdownStart.Format("2006-01-02"), m.DrawdownEnd.Format("2006-01-02")),
			Confidence: 0.9,
			Metrics:    map[string]float64{"max_drawdown": m.MaxDrawdown},
		})
	}
	if m.Kurtosis > 3 {
		out = append(out, models.PatternFinding{
			Label:    "fat-tailed return distribution",
			Category: models.CategoryRisk,
			Description: fmt.Sprintf(
				"excess kurtosis %.1f: tail risk exceeds the normal benchmark, prefer the Cornish-Fisher VaR",
				m.Kurtosis),
			Confidence: 0.8,
			Metrics:    map[string]float64{"kurtosis": m.Kurtosis, "skewness": m.Skewness},
		})
	}
	return out
}

func downsideDeviation(returns []float64) float64 {
	var s float64
	n := 0
	for _, r := range returns {
		if r < 0 {
			s += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(s / float64(n))
}

// maxDrawdown walks the cumulative path tracking the running peak.
func maxDrawdown(series *models.ReturnSeries) (dd float64, start, end time.Time) {
	peak := math.Inf(-1)
	var peakDate time.Time
	for _, p := range series.Points {
		price := 1 + p.CumReturn
		if price > peak {
			peak = price
			peakDate = p.Date
		}
		draw := price/peak - 1
		if draw < dd {
			dd = draw
			start = peakDate
			end = p.Date
		}
	}
	return dd, start, end
}

// cornishFisherZ adjusts the normal quantile for skew and excess
// kurtosis.
func cornishFisherZ(z, skew, kurt float64) float64 {
	return z +
		(z*z-1)*skew/6 +
		(z*z*z-3*z)*kurt/24 -
		(2*z*z*z-5*z)*skew*skew/36
}
