package risk

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"SeasonEdge/internal/domain/models"
)

func buildSeries(n int, ret func(i int) float64) *models.ReturnSeries {
	var points []models.ReturnPoint
	d := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
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

func TestAnnualization(t *testing.T) {
	s := buildSeries(504, func(i int) float64 { return 0.001 })
	m := NewCalculator(0).Compute(s)

	want := math.Pow(1.001, 252) - 1
	if math.Abs(m.AnnualReturn-want) > 1e-9 {
		t.Fatalf("annual return = %v, want %v", m.AnnualReturn, want)
	}
	if m.AnnualVolatility != 0 {
		t.Fatalf("constant returns, vol = %v", m.AnnualVolatility)
	}
	if m.MaxDrawdown != 0 {
		t.Fatalf("monotone series, drawdown = %v", m.MaxDrawdown)
	}
}

func TestFlatSeriesAllZero(t *testing.T) {
	s := buildSeries(252, func(i int) float64 { return 0 })
	m := NewCalculator(0).Compute(s)

	for name, v := range map[string]float64{
		"annual_return": m.AnnualReturn, "annual_vol": m.AnnualVolatility,
		"sharpe": m.Sharpe, "sortino": m.Sortino,
		"max_drawdown": m.MaxDrawdown,
		"skewness":     m.Skewness, "kurtosis": m.Kurtosis,
	} {
		if v != 0 {
			t.Fatalf("%s = %v on a flat series, want 0", name, v)
		}
	}
	for key, v := range m.VaR {
		if math.IsNaN(v) || v != 0 {
			t.Fatalf("VaR %s = %v on a flat series, want 0", key, v)
		}
	}
	if findings := NewCalculator(0).Findings(m); len(findings) != 0 {
		t.Fatalf("flat series produced risk findings: %+v", findings)
	}
}

func TestMaxDrawdownDates(t *testing.T) {
	// up 100 sessions, crash 50, recover
	s := buildSeries(300, func(i int) float64 {
		switch {
		case i < 100:
			return 0.005
		case i < 150:
			return -0.01
		default:
			return 0.004
		}
	})
	m := NewCalculator(0).Compute(s)

	wantDD := math.Pow(0.99, 50) - 1
	if math.Abs(m.MaxDrawdown-wantDD) > 1e-9 {
		t.Fatalf("drawdown = %v, want %v", m.MaxDrawdown, wantDD)
	}
	if !m.DrawdownStart.Equal(s.Points[99].Date) {
		t.Fatalf("drawdown start = %v, want peak at %v", m.DrawdownStart, s.Points[99].Date)
	}
	if !m.DrawdownEnd.Equal(s.Points[149].Date) {
		t.Fatalf("drawdown end = %v, want trough at %v", m.DrawdownEnd, s.Points[149].Date)
	}
}

func TestSharpeAndSortinoSigns(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	up := buildSeries(500, func(i int) float64 { return 0.002 + rng.NormFloat64()*0.01 })
	m := NewCalculator(0).Compute(up)
	if m.Sharpe <= 0 || m.Sortino <= 0 {
		t.Fatalf("rising series sharpe=%v sortino=%v", m.Sharpe, m.Sortino)
	}

	down := buildSeries(500, func(i int) float64 { return -0.002 + rng.NormFloat64()*0.01 })
	m = NewCalculator(0).Compute(down)
	if m.Sharpe >= 0 {
		t.Fatalf("falling series sharpe = %v", m.Sharpe)
	}
}

func TestVaRLevels(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	s := buildSeries(1000, func(i int) float64 { return rng.NormFloat64() * 0.01 })
	m := NewCalculator(0).Compute(s)

	for _, key := range []string{"hist_1", "hist_5", "hist_10", "cf_1", "cf_5", "cf_10"} {
		v, ok := m.VaR[key]
		if !ok {
			t.Fatalf("missing VaR key %q", key)
		}
		if v >= 0 {
			t.Fatalf("VaR %s = %v, want negative on zero-mean returns", key, v)
		}
	}
	if m.VaR["hist_1"] >= m.VaR["hist_5"] {
		t.Fatalf("1%% VaR %v not deeper than 5%% VaR %v", m.VaR["hist_1"], m.VaR["hist_5"])
	}
	// near-normal sample: the two estimators should be close
	if math.Abs(m.VaR["cf_5"]-m.VaR["hist_5"]) > 0.005 {
		t.Fatalf("cf_5 %v far from hist_5 %v on gaussian data", m.VaR["cf_5"], m.VaR["hist_5"])
	}
}

func TestFindingsFlagDeepDrawdownAndFatTails(t *testing.T) {
	s := buildSeries(400, func(i int) float64 {
		if i >= 100 && i < 180 {
			return -0.01
		}
		if i%97 == 0 {
			return -0.08 // occasional crash days fatten the tails
		}
		return 0.003
	})
	c := NewCalculator(0)
	m := c.Compute(s)
	findings := c.Findings(m)

	labels := map[string]bool{}
	for _, f := range findings {
		if f.Category != models.CategoryRisk {
			t.Fatalf("category = %v", f.Category)
		}
		labels[f.Label] = true
	}
	if !labels["deep historical drawdown"] {
		t.Fatalf("drawdown finding missing: dd=%v findings=%+v", m.MaxDrawdown, findings)
	}
	if !labels["fat-tailed return distribution"] {
		t.Fatalf("kurtosis finding missing: k=%v", m.Kurtosis)
	}
}
