// Package usecase orchestrates the full analysis pipeline: fetch,
// prepare, run the analysis modules, and aggregate their findings.
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/domain/repository"
	"SeasonEdge/internal/domain/service"
	"SeasonEdge/internal/services/anomaly"
	"SeasonEdge/internal/services/decompose"
	"SeasonEdge/internal/services/features"
	"SeasonEdge/internal/services/forecast"
	"SeasonEdge/internal/services/patterns"
	"SeasonEdge/internal/services/regime"
	"SeasonEdge/internal/services/risk"
	"SeasonEdge/internal/services/seasonal"
	"SeasonEdge/internal/services/series"
	"SeasonEdge/pkg/cache"
	"SeasonEdge/pkg/config"
	"SeasonEdge/pkg/logger"
)

// Request identifies one analysis run. A nil Options falls back to the
// engine defaults.
type Request struct {
	Symbol  string
	From    time.Time
	To      time.Time
	Options *config.Analysis
}

type Engine struct {
	source   repository.CandleSource
	sink     repository.CandleSink
	cache    cache.Service
	cacheTTL time.Duration
	metrics  repository.Metrics
	log      *logger.Logger
	defaults config.Analysis

	extractor  *features.Extractor
	detector   service.PatternDetector
	anomalies  service.AnomalyDetector
	forecaster service.Forecaster
}

type Option func(*Engine)

func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

func WithSink(s repository.CandleSink) Option {
	return func(e *Engine) { e.sink = s }
}

func WithMetrics(m repository.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithDefaults(a config.Analysis) Option {
	return func(e *Engine) { e.defaults = a }
}

func NewEngine(source repository.CandleSource, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		defaults:   config.DefaultAnalysis(),
		extractor:  features.NewExtractor(),
		detector:   patterns.NewDetector(),
		anomalies:  anomaly.NewDetector(),
		forecaster: forecast.NewForecaster(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the whole pipeline for one symbol and range. Statistical
// modules that cannot run are recorded in Unavailable; only input and
// configuration problems abort the run.
func (e *Engine) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	opts := req.Options
	if opts == nil {
		o := e.defaults
		opts = &o
	}
	if err := config.ValidateAnalysis(opts); err != nil {
		return nil, err
	}
	if req.Symbol == "" {
		return nil, &models.ConfigurationError{Option: "symbol", Reason: "must not be empty"}
	}

	key := cache.AnalysisKey(req.Symbol, req.From, req.To, features.SchemaVersion)
	if cached := e.lookup(ctx, key); cached != nil {
		return cached, nil
	}
	started := time.Now()

	candles, err := e.source.Candles(ctx, req.Symbol, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}

	prepared, err := series.NewPreparer(opts.MinObservations).Prepare(req.Symbol, candles)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Symbol:        req.Symbol,
		Range:         prepared.Range(),
		GeneratedAt:   time.Now().UTC(),
		SchemaVersion: features.SchemaVersion,
		Unavailable:   make(map[string]string),
	}

	analyzer := seasonal.NewAnalyzer(opts.SignificanceLevel, opts.MinSampleYears)
	result.MonthlyStats = analyzer.MonthlyStats(prepared)
	result.QuarterlyStats = analyzer.QuarterlyStats(prepared)
	result.WeekdayStats = analyzer.WeekdayStats(prepared)
	statFindings := analyzer.Findings(result.MonthlyStats)

	years := 0
	for _, st := range result.MonthlyStats {
		if st.SampleCount > years {
			years = st.SampleCount
		}
	}
	statFindings = append(statFindings, analyzer.PeriodFindings(result.QuarterlyStats, years)...)
	statFindings = append(statFindings, analyzer.PeriodFindings(result.WeekdayStats, years)...)

	matrix := e.extractor.Extract(prepared)

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		mlFindings  []models.PatternFinding
		anomalies   []models.PatternFinding
		riskResults []models.PatternFinding
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		found, derr := e.detector.Detect(matrix, prepared)
		mu.Lock()
		defer mu.Unlock()
		if derr != nil {
			e.skip(result, "patterns", derr)
			return
		}
		mlFindings = found
	}()

	if opts.EnableAnomalyDetection {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, derr := e.anomalies.Detect(matrix, prepared)
			mu.Lock()
			defer mu.Unlock()
			if derr != nil {
				e.skip(result, "anomaly", derr)
				return
			}
			anomalies = found
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		dec, breaks, derr := decompose.NewDecomposer(opts.StructuralBreakSensitivity).Decompose(prepared)
		mu.Lock()
		defer mu.Unlock()
		if derr != nil {
			e.skip(result, "decomposition", derr)
			return
		}
		result.Decomposition = dec
		result.Breaks = breaks
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		segs := regime.NewClassifier(opts.RegimeMinRun).Classify(prepared)
		mu.Lock()
		result.Regimes = segs
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		calc := risk.NewCalculator(0)
		m := calc.Compute(prepared)
		mu.Lock()
		result.Risk = m
		riskResults = calc.Findings(m)
		mu.Unlock()
	}()

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// forecasting runs after decomposition: detected breaks seed the
	// trend changepoints
	if opts.EnableForecast {
		e.runForecasts(result, prepared, opts.ForecastHorizons)
	}

	stratFindings := strategyFindings(result.MonthlyStats, opts.SignificanceLevel, opts.MinSampleYears)
	result.PatternStrength = patternStrength(result.MonthlyStats, opts.SignificanceLevel)
	result.Findings = mergeFindings(opts.ConfidenceThreshold,
		statFindings, mlFindings, anomalies, riskResults, stratFindings)

	elapsed := time.Since(started)
	if e.metrics != nil {
		e.metrics.RecordRun(req.Symbol, elapsed.Seconds())
	}
	if e.log != nil {
		e.log.Info("analysis complete",
			logger.String("symbol", req.Symbol),
			logger.Int("sessions", prepared.Len()),
			logger.Int("findings", len(result.Findings)),
			logger.Duration("duration_ms", elapsed),
		)
	}

	e.store(ctx, key, result)
	return result, nil
}

func (e *Engine) runForecasts(result *models.AnalysisResult, prepared *models.ReturnSeries, horizons []int) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, h := range horizons {
		wg.Add(1)
		go func(horizon int) {
			defer wg.Done()
			fc, err := e.forecaster.Forecast(prepared, horizon, result.Breaks)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.skip(result, fmt.Sprintf("forecast_%dd", horizon), err)
				return
			}
			result.Forecasts = append(result.Forecasts, *fc)
		}(h)
	}
	wg.Wait()

	// concurrent completion order is nondeterministic, restore by horizon
	for i := 1; i < len(result.Forecasts); i++ {
		for j := i; j > 0 && result.Forecasts[j-1].HorizonDays > result.Forecasts[j].HorizonDays; j-- {
			result.Forecasts[j-1], result.Forecasts[j] = result.Forecasts[j], result.Forecasts[j-1]
		}
	}
}

// skip records a soft module failure; hard errors inside a module are
// also downgraded here since the rest of the run remains valid.
func (e *Engine) skip(result *models.AnalysisResult, module string, err error) {
	result.Unavailable[module] = err.Error()
	if e.metrics != nil {
		e.metrics.RecordModuleError(module)
	}
	if e.log != nil {
		e.log.Warn("module skipped",
			logger.String("module", module),
			logger.Error(err),
		)
	}
}

func (e *Engine) lookup(ctx context.Context, key string) *models.AnalysisResult {
	if e.cache == nil {
		return nil
	}
	var cached models.AnalysisResult
	if err := e.cache.Get(ctx, key, &cached); err != nil {
		if e.metrics != nil {
			e.metrics.RecordCache(false)
		}
		return nil
	}
	if e.metrics != nil {
		e.metrics.RecordCache(true)
	}
	return &cached
}

// Backfill stores a batch of bars and drops every cached run for the
// symbols the batch touches, so the next analysis sees the new history.
func (e *Engine) Backfill(ctx context.Context, candles []models.Candle) error {
	if e.sink == nil {
		return &models.ConfigurationError{Option: "source", Reason: "candle store is not writable"}
	}
	if len(candles) == 0 {
		return &models.ConfigurationError{Option: "candles", Reason: "must not be empty"}
	}
	if err := e.sink.Insert(ctx, candles); err != nil {
		return fmt.Errorf("store candles: %w", err)
	}

	seen := make(map[string]bool)
	for _, c := range candles {
		if seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		if err := e.Invalidate(ctx, c.Symbol); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops every cached run for the symbol, regardless of range
// or schema version. Call it after a data backfill.
func (e *Engine) Invalidate(ctx context.Context, symbol string) error {
	if symbol == "" {
		return &models.ConfigurationError{Option: "symbol", Reason: "must not be empty"}
	}
	if e.cache == nil {
		return nil
	}
	return e.cache.DeleteByPattern(ctx, cache.AnalysisPattern(symbol))
}

func (e *Engine) store(ctx context.Context, key string, result *models.AnalysisResult) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, result, e.cacheTTL); err != nil && e.log != nil {
		e.log.Warn("cache store failed", logger.Error(err))
	}
}
