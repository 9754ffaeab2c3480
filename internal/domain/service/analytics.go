package service

import (
	"SeasonEdge/internal/domain/models"
)

// SeasonalAnalyzer computes calendar-bucketed return statistics and the
// findings they justify.
type SeasonalAnalyzer interface {
	MonthlyStats(series *models.ReturnSeries) []models.MonthlyStat
	QuarterlyStats(series *models.ReturnSeries) []models.PeriodStat
	WeekdayStats(series *models.ReturnSeries) []models.PeriodStat
	Findings(stats []models.MonthlyStat) []models.PatternFinding
	PeriodFindings(stats []models.PeriodStat, years int) []models.PatternFinding
}

// PatternDetector trains a model over the feature matrix and surfaces
// validated seasonal patterns.
type PatternDetector interface {
	Detect(matrix *models.FeatureMatrix, series *models.ReturnSeries) ([]models.PatternFinding, error)
}

// AnomalyDetector scores the most recent observation against the fitted
// historical distribution of the feature space.
type AnomalyDetector interface {
	Detect(matrix *models.FeatureMatrix, series *models.ReturnSeries) ([]models.PatternFinding, error)
}

// Decomposer splits the series into trend/seasonal/residual components and
// runs stationarity, serial-correlation and structural-break tests.
type Decomposer interface {
	Decompose(series *models.ReturnSeries) (*models.Decomposition, []models.StructuralBreak, error)
}

// RegimeClassifier labels dates into volatility and trend regimes.
type RegimeClassifier interface {
	Classify(series *models.ReturnSeries) []models.RegimeSegment
}

// Forecaster produces one multi-horizon forecast with uncertainty bounds
// and cross-validated accuracy.
type Forecaster interface {
	Forecast(series *models.ReturnSeries, horizonDays int, breaks []models.StructuralBreak) (*models.ForecastResult, error)
}

// PatternModel is the capability contract for trainable models. New model
// families implement it without touching the aggregator.
type PatternModel interface {
	Fit(rows [][]float64, labels []int) error
	Predict(row []float64) float64 // probability of the positive class
	FeatureImportances() []float64 // one weight per feature, sums to 1
}
