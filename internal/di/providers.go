package di

import (
	"context"
	"fmt"
	"time"

	"SeasonEdge/internal/domain/repository"
	"SeasonEdge/internal/handler/api"
	internalrepo "SeasonEdge/internal/repository"
	"SeasonEdge/internal/usecase"
	pkgcache "SeasonEdge/pkg/cache"
	pkgch "SeasonEdge/pkg/clickhouse"
	"SeasonEdge/pkg/config"
	"SeasonEdge/pkg/logger"
	"SeasonEdge/pkg/metrics"
	"SeasonEdge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvideClickHouseClient creates a ClickHouse client when the candle
// source is ClickHouse; otherwise it returns nil and the CSV source is
// used instead.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Source.Type != "clickhouse" {
		return nil, nil
	}
	ch := cfg.Source.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleSource selects the configured candle backend.
func ProvideCandleSource(cfg *config.Config, chClient *pkgch.Client) (repository.CandleSource, error) {
	switch cfg.Source.Type {
	case "clickhouse":
		return internalrepo.NewCHCandleStore(chClient), nil
	case "csv":
		return internalrepo.NewCSVSource(cfg.Source.CSVDir), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

// ProvideCache builds the result cache: layered (memory + redis) when
// redis is configured, in-process memory otherwise, nil when disabled.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		rc, err := pkgcache.NewRedisCacheFromAddr(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return pkgcache.NewLayeredCache(rc), nil
	}
	return pkgcache.NewMemoryCache(), nil
}

// ProvideEngine assembles the analysis engine.
func ProvideEngine(
	source repository.CandleSource,
	cacheSvc pkgcache.Service,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.Engine {
	opts := []usecase.Option{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithDefaults(cfg.Analysis),
	}
	if cacheSvc != nil {
		opts = append(opts, usecase.WithCache(cacheSvc, cfg.Cache.TTL))
	}
	if sink, ok := source.(repository.CandleSink); ok {
		opts = append(opts, usecase.WithSink(sink))
	}
	return usecase.NewEngine(source, opts...)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(l *logger.Logger, engine *usecase.Engine) *api.AnalysisHandler {
	return api.NewAnalysisHandler(l, engine)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler *api.AnalysisHandler,
	chClient *pkgch.Client,
	cacheSvc pkgcache.Service,
) *server.App {
	return server.New(cfg, l, handler, chClient, cacheSvc)
}
