package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SeasonEdge/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Source struct {
		Type       string `yaml:"type" default:"csv" validate:"oneof=csv clickhouse"`
		CSVDir     string `yaml:"csv_dir" default:"data"`
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"seasonedge"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"clickhouse"`
	} `yaml:"source"`
	Cache struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		TTL     time.Duration `yaml:"ttl" default:"1h"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Analysis Analysis `yaml:"analysis"`
}

// Analysis is the configuration surface consumed by the engine.
type Analysis struct {
	ConfidenceThreshold        float64 `yaml:"confidence_threshold" default:"0.75" validate:"gte=0.5,lte=0.99"`
	MinSampleYears             int     `yaml:"min_sample_years" default:"3" validate:"gte=1"`
	SignificanceLevel          float64 `yaml:"significance_level" default:"0.05" validate:"gt=0,lt=1"`
	MinObservations            int     `yaml:"min_observations" default:"50" validate:"gte=10"`
	EnableForecast             bool    `yaml:"enable_forecast" default:"true"`
	ForecastHorizons           []int   `yaml:"forecast_horizons" validate:"dive,gt=0"`
	EnableAnomalyDetection     bool    `yaml:"enable_anomaly_detection" default:"true"`
	StructuralBreakSensitivity float64 `yaml:"structural_break_sensitivity" default:"2.0" validate:"gt=0"`
	RegimeMinRun               int     `yaml:"regime_min_run" default:"10" validate:"gte=1"`
}

// DefaultAnalysis returns the engine defaults used when a request omits
// its analysis block.
func DefaultAnalysis() Analysis {
	var a Analysis
	_ = defaults.Set(&a)
	a.EnableForecast = true
	a.EnableAnomalyDetection = true
	a.ForecastHorizons = []int{30, 60, 90, 180, 365}
	return a
}

var validate = validator.New()

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Analysis.ForecastHorizons) == 0 {
		c.Analysis.ForecastHorizons = []int{30, 60, 90, 180, 365}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SEASONEDGE_SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Source.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate fails fast with a ConfigurationError before any computation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return asConfigurationError(err)
	}
	if c.Source.Type == "clickhouse" && c.Source.ClickHouse.Host == "" {
		return &models.ConfigurationError{Option: "source.clickhouse.host", Reason: "required when source.type is clickhouse"}
	}
	return nil
}

// ValidateAnalysis checks a caller-supplied per-request analysis config.
func ValidateAnalysis(a *Analysis) error {
	if err := validate.Struct(a); err != nil {
		return asConfigurationError(err)
	}
	return nil
}

func asConfigurationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return &models.ConfigurationError{
			Option: fe.Namespace(),
			Reason: fmt.Sprintf("failed %s=%s constraint", fe.Tag(), fe.Param()),
		}
	}
	return err
}
