package models

import "time"

// FindingCategory buckets pattern findings by the signal family that
// produced them.
type FindingCategory string

const (
	CategorySeasonal FindingCategory = "seasonal"
	CategoryRegime   FindingCategory = "regime"
	CategoryRisk     FindingCategory = "risk"
	CategoryStrategy FindingCategory = "strategy"
	CategoryAnomaly  FindingCategory = "anomaly"
)

// MonthlyStat aggregates returns for one calendar month across all years.
type MonthlyStat struct {
	Month        time.Month `json:"month"`
	SampleCount  int        `json:"sample_count"` // number of (year, month) aggregates
	MeanReturn   float64    `json:"mean_return"`
	MedianReturn float64    `json:"median_return"`
	WinRate      float64    `json:"win_rate"` // fraction of years positive, [0,1]
	StdDev       float64    `json:"std_dev"`
	MinReturn    float64    `json:"min_return"`
	MaxReturn    float64    `json:"max_return"`
	PValueZero   float64    `json:"p_value_zero"`    // one-sample t-test vs zero
	PValueVsMean float64    `json:"p_value_vs_mean"` // one-sample t-test vs series-wide mean
	EffectSize   float64    `json:"effect_size"`     // Cohen's d vs series-wide mean
	CILow        float64    `json:"ci_low"`
	CIHigh       float64    `json:"ci_high"`
}

// PeriodStat is the same stat block keyed by an arbitrary calendar bucket
// (quarter "Q1".."Q4" or weekday name).
type PeriodStat struct {
	Period      string  `json:"period"`
	SampleCount int     `json:"sample_count"`
	MeanReturn  float64 `json:"mean_return"`
	WinRate     float64 `json:"win_rate"`
	StdDev      float64 `json:"std_dev"`
	PValueZero  float64 `json:"p_value_zero"`
}

// PatternFinding is one ranked, explainable signal. Immutable after
// creation; exactly one module produces each finding.
type PatternFinding struct {
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Category    FindingCategory    `json:"category"`
	Confidence  float64            `json:"confidence"` // [0,1]
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// ForecastResult carries one horizon's forecast with two-sided bounds.
type ForecastResult struct {
	HorizonDays int         `json:"horizon_days"`
	Dates       []time.Time `json:"dates"`
	Point       []float64   `json:"point"`
	Lower80     []float64   `json:"lower_80"`
	Upper80     []float64   `json:"upper_80"`
	Lower95     []float64   `json:"lower_95"`
	Upper95     []float64   `json:"upper_95"`
	Accuracy    Accuracy    `json:"accuracy"`
}

// Accuracy aggregates rolling-origin cross-validation metrics.
type Accuracy struct {
	MAPE        float64 `json:"mape"`
	MAE         float64 `json:"mae"`
	Directional float64 `json:"directional"` // fraction of folds with correct sign
	Folds       int     `json:"folds"`
}

// RegimeType labels a contiguous market regime.
type RegimeType string

const (
	RegimeLowVol  RegimeType = "lowVol"
	RegimeHighVol RegimeType = "highVol"
	RegimeBull    RegimeType = "bull"
	RegimeBear    RegimeType = "bear"
	RegimeNeutral RegimeType = "neutral"
)

// RegimeSegment is one run-length-encoded regime span. Volatility and
// trend regimes form two parallel segment streams distinguished by Dimension.
type RegimeSegment struct {
	Type      RegimeType `json:"type"`
	Dimension string     `json:"dimension"` // "volatility" or "trend"
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Sessions  int        `json:"sessions"`
}

// BreakType distinguishes which moment shifted at a structural break.
type BreakType string

const (
	BreakMeanShift       BreakType = "meanShift"
	BreakVolatilityShift BreakType = "volatilityShift"
)

// StructuralBreak marks a date where a rolling statistic shifted beyond
// the configured sensitivity.
type StructuralBreak struct {
	Date          time.Time `json:"date"`
	Type          BreakType `json:"type"`
	Magnitude     float64   `json:"magnitude"` // in units of rolling-stat stddevs
	TestStatistic float64   `json:"test_statistic"`
}

// Decomposition summarises the trend/seasonal/residual split and the
// residual diagnostics.
type Decomposition struct {
	Model               string  `json:"model"` // "additive" or "multiplicative"
	TrendSlope          float64 `json:"trend_slope"`
	SeasonalStrength    float64 `json:"seasonal_strength"` // share of variance
	ADFStatistic        float64 `json:"adf_statistic"`
	ADFPValue           float64 `json:"adf_p_value"`
	Stationary          bool    `json:"stationary"`
	LjungBoxStatistic   float64 `json:"ljung_box_statistic"`
	LjungBoxPValue      float64 `json:"ljung_box_p_value"`
	ResidualCorrelation bool    `json:"residual_correlation"`
}

// RiskMetrics is the per-run risk summary.
type RiskMetrics struct {
	AnnualReturn     float64            `json:"annual_return"`
	AnnualVolatility float64            `json:"annual_volatility"`
	Sharpe           float64            `json:"sharpe"`
	Sortino          float64            `json:"sortino"`
	MaxDrawdown      float64            `json:"max_drawdown"`
	DrawdownStart    time.Time          `json:"drawdown_start"`
	DrawdownEnd      time.Time          `json:"drawdown_end"`
	Skewness         float64            `json:"skewness"`
	Kurtosis         float64            `json:"kurtosis"` // excess
	VaR              map[string]float64 `json:"var"`      // "hist_5", "cf_5", ...
}

// PatternStrength scores the overall quality of the seasonal structure.
type PatternStrength struct {
	Overall        float64 `json:"overall"`
	Consistency    float64 `json:"consistency"`
	WinRateQuality float64 `json:"win_rate_quality"`
	Reliability    float64 `json:"reliability"`
	Magnitude      float64 `json:"magnitude"`
	Interpretation string  `json:"interpretation"`
}

// AnalysisResult is the top-level aggregate returned to the caller. The
// engine retains no reference after returning it.
type AnalysisResult struct {
	Symbol          string            `json:"symbol"`
	Range           DateRange         `json:"range"`
	GeneratedAt     time.Time         `json:"generated_at"`
	SchemaVersion   string            `json:"schema_version"`
	MonthlyStats    []MonthlyStat     `json:"monthly_stats"`
	QuarterlyStats  []PeriodStat      `json:"quarterly_stats,omitempty"`
	WeekdayStats    []PeriodStat      `json:"weekday_stats,omitempty"`
	Findings        []PatternFinding  `json:"findings"`
	Forecasts       []ForecastResult  `json:"forecasts,omitempty"`
	Regimes         []RegimeSegment   `json:"regimes,omitempty"`
	Breaks          []StructuralBreak `json:"breaks,omitempty"`
	Decomposition   *Decomposition    `json:"decomposition,omitempty"`
	Risk            *RiskMetrics      `json:"risk,omitempty"`
	PatternStrength *PatternStrength  `json:"pattern_strength,omitempty"`

	// Unavailable records every module skipped by a soft failure, keyed by
	// module name with a human-readable reason. Callers render these as
	// "insufficient data for X" rather than silently missing sections.
	Unavailable map[string]string `json:"unavailable,omitempty"`
}

// CurrentRegime returns the trend segment containing the latest date.
func (r *AnalysisResult) CurrentRegime() *RegimeSegment {
	var cur *RegimeSegment
	for i := range r.Regimes {
		seg := &r.Regimes[i]
		if seg.Dimension != "trend" {
			continue
		}
		if cur == nil || seg.End.After(cur.End) {
			cur = seg
		}
	}
	return cur
}
