package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Fixtures  FixturesConfig  `yaml:"fixtures" mapstructure:"fixtures"`
	Comps     CompsConfig     `yaml:"comps" mapstructure:"comps"`
	Screening ScreeningConfig `yaml:"screening" mapstructure:"screening"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec on mutating routes; 0 disables
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// FixturesConfig points at an optional seed catalog replacing the embedded one.
type FixturesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CompsConfig configures comparable filtering and scoring.
type CompsConfig struct {
	DefaultMonths int              `yaml:"default_months" mapstructure:"default_months"`
	CacheTTLMins  int              `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	Similarity    SimilarityConfig `yaml:"similarity" mapstructure:"similarity"`
}

// SimilarityConfig holds per-field weights and normalization caps for the
// comp similarity score. Weights sum to 1.
type SimilarityConfig struct {
	DistanceWeight     float64 `yaml:"distance_weight" mapstructure:"distance_weight"`
	YearBuiltWeight    float64 `yaml:"year_built_weight" mapstructure:"year_built_weight"`
	AvgUnitSizeWeight  float64 `yaml:"avg_unit_size_weight" mapstructure:"avg_unit_size_weight"`
	UnitsWeight        float64 `yaml:"units_weight" mapstructure:"units_weight"`
	WalkScoreWeight    float64 `yaml:"walk_score_weight" mapstructure:"walk_score_weight"`
	PricePerUnitWeight float64 `yaml:"price_per_unit_weight" mapstructure:"price_per_unit_weight"`

	DistanceCap     float64 `yaml:"distance_cap" mapstructure:"distance_cap"`
	YearBuiltCap    float64 `yaml:"year_built_cap" mapstructure:"year_built_cap"`
	AvgUnitSizeCap  float64 `yaml:"avg_unit_size_cap" mapstructure:"avg_unit_size_cap"`
	UnitsCap        float64 `yaml:"units_cap" mapstructure:"units_cap"`
	WalkScoreCap    float64 `yaml:"walk_score_cap" mapstructure:"walk_score_cap"`
	PricePerUnitCap float64 `yaml:"price_per_unit_cap" mapstructure:"price_per_unit_cap"`
}

// ScreeningConfig configures the reputation screening workflow.
type ScreeningConfig struct {
	RunLatencyMs int      `yaml:"run_latency_ms" mapstructure:"run_latency_ms"`
	DefaultTerms []string `yaml:"default_terms" mapstructure:"default_terms"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("UNDERWRITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("fixtures.path", "")
	v.SetDefault("comps.default_months", 12)
	v.SetDefault("comps.cache_ttl_mins", 5)
	v.SetDefault("comps.similarity.distance_weight", 0.25)
	v.SetDefault("comps.similarity.year_built_weight", 0.15)
	v.SetDefault("comps.similarity.avg_unit_size_weight", 0.20)
	v.SetDefault("comps.similarity.units_weight", 0.10)
	v.SetDefault("comps.similarity.walk_score_weight", 0.10)
	v.SetDefault("comps.similarity.price_per_unit_weight", 0.20)
	v.SetDefault("comps.similarity.distance_cap", 10)
	v.SetDefault("comps.similarity.year_built_cap", 25)
	v.SetDefault("comps.similarity.avg_unit_size_cap", 400)
	v.SetDefault("comps.similarity.units_cap", 200)
	v.SetDefault("comps.similarity.walk_score_cap", 50)
	v.SetDefault("comps.similarity.price_per_unit_cap", 150000)
	v.SetDefault("screening.run_latency_ms", 2000)
	v.SetDefault("screening.default_terms", []string{
		"Litigation", "Financial Crime", "Regulatory Action", "Sanctions", "Fraud",
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required by the given mode are present.
// Modes: "serve" (HTTP API) and "cli" (one-shot commands).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
			errs = append(errs, "server.rate_burst must be > 0 when rate_limit is set")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Comps.DefaultMonths <= 0 {
		errs = append(errs, "comps.default_months must be > 0")
	}
	if c.Comps.CacheTTLMins < 0 {
		errs = append(errs, "comps.cache_ttl_mins must be >= 0")
	}
	if c.Screening.RunLatencyMs < 0 {
		errs = append(errs, "screening.run_latency_ms must be >= 0")
	}
	errs = append(errs, c.Comps.Similarity.problems()...)

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// WeightSum returns the sum of all field weights.
func (s SimilarityConfig) WeightSum() float64 {
	return s.DistanceWeight + s.YearBuiltWeight + s.AvgUnitSizeWeight +
		s.UnitsWeight + s.WalkScoreWeight + s.PricePerUnitWeight
}

func (s SimilarityConfig) problems() []string {
	var errs []string
	weights := []struct {
		name string
		v    float64
	}{
		{"distance_weight", s.DistanceWeight},
		{"year_built_weight", s.YearBuiltWeight},
		{"avg_unit_size_weight", s.AvgUnitSizeWeight},
		{"units_weight", s.UnitsWeight},
		{"walk_score_weight", s.WalkScoreWeight},
		{"price_per_unit_weight", s.PricePerUnitWeight},
	}
	for _, w := range weights {
		if w.v < 0 {
			errs = append(errs, fmt.Sprintf("comps.similarity.%s must be >= 0", w.name))
		}
	}
	caps := []struct {
		name string
		v    float64
	}{
		{"distance_cap", s.DistanceCap},
		{"year_built_cap", s.YearBuiltCap},
		{"avg_unit_size_cap", s.AvgUnitSizeCap},
		{"units_cap", s.UnitsCap},
		{"walk_score_cap", s.WalkScoreCap},
		{"price_per_unit_cap", s.PricePerUnitCap},
	}
	for _, c := range caps {
		if c.v <= 0 {
			errs = append(errs, fmt.Sprintf("comps.similarity.%s must be > 0", c.name))
		}
	}
	if sum := s.WeightSum(); math.Abs(sum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("comps.similarity weights should sum to 1, got %.2f", sum))
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
