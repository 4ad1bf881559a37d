// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs      InputsConfig      `yaml:"inputs" mapstructure:"inputs"`
	Attribution AttributionConfig `yaml:"attribution" mapstructure:"attribution"`
	Enrich      EnrichConfig      `yaml:"enrich" mapstructure:"enrich"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Overall     OverallConfig     `yaml:"overall" mapstructure:"overall"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// InputsConfig locates and describes the source tables.
type InputsConfig struct {
	Pings          string `yaml:"pings" mapstructure:"pings"`
	Venues         string `yaml:"venues" mapstructure:"venues"`
	Features       string `yaml:"features" mapstructure:"features"`
	Boundary       string `yaml:"boundary" mapstructure:"boundary"`
	PingDelimiter  string `yaml:"ping_delimiter" mapstructure:"ping_delimiter"`
	VenueDelimiter string `yaml:"venue_delimiter" mapstructure:"venue_delimiter"`
	VenueEncoding  string `yaml:"venue_encoding" mapstructure:"venue_encoding"`
	VenueLatCol    string `yaml:"venue_lat_col" mapstructure:"venue_lat_col"`
	VenueLngCol    string `yaml:"venue_lng_col" mapstructure:"venue_lng_col"`

	// MaxPings caps the ping rows loaded into memory. Applied once at load
	// time to keep the in-memory join tractable.
	MaxPings int `yaml:"max_pings" mapstructure:"max_pings"`
}

// AttributionConfig configures the spatial join.
type AttributionConfig struct {
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	Projection   string  `yaml:"projection" mapstructure:"projection"`
	Output       string  `yaml:"output" mapstructure:"output"`
}

// EnrichConfig configures the device feature join.
type EnrichConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
}

// ScoringConfig declares the richness formula. Weights and normalization are
// configuration by design; the formula has no hidden constants.
type ScoringConfig struct {
	GroupBy      string             `yaml:"group_by" mapstructure:"group_by"`
	Features     []string           `yaml:"features" mapstructure:"features"`
	Aggregate    string             `yaml:"aggregate" mapstructure:"aggregate"`
	Normalize    string             `yaml:"normalize" mapstructure:"normalize"`
	LogTransform []string           `yaml:"log_transform" mapstructure:"log_transform"`
	Weights      map[string]float64 `yaml:"weights" mapstructure:"weights"`
	Output       string             `yaml:"output" mapstructure:"output"`
}

// OverallConfig configures the per-device combination of component scores.
type OverallConfig struct {
	CafeWeight       float64 `yaml:"cafe_weight" mapstructure:"cafe_weight"`
	PingWeight       float64 `yaml:"ping_weight" mapstructure:"ping_weight"`
	RestaurantWeight float64 `yaml:"restaurant_weight" mapstructure:"restaurant_weight"`
	Output           string  `yaml:"output" mapstructure:"output"`
}

// StoreConfig configures the SQLite run registry.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RICHNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.pings", "data/pings.csv")
	v.SetDefault("inputs.venues", "data/venues.csv")
	v.SetDefault("inputs.features", "data/device_features.csv")
	v.SetDefault("inputs.boundary", "data/boundary.shp")
	v.SetDefault("inputs.ping_delimiter", ",")
	v.SetDefault("inputs.venue_delimiter", ";")
	v.SetDefault("inputs.venue_encoding", "utf-8")
	v.SetDefault("inputs.venue_lat_col", "lat")
	v.SetDefault("inputs.venue_lng_col", "lng")
	v.SetDefault("inputs.max_pings", 1_000_000)
	v.SetDefault("attribution.radius_meters", 50.0)
	v.SetDefault("attribution.projection", "epsg:32636")
	v.SetDefault("attribution.output", "data/visits.csv")
	v.SetDefault("enrich.output", "data/visits_enriched.csv")
	v.SetDefault("scoring.group_by", "MusteriKodu")
	v.SetDefault("scoring.aggregate", "mean")
	v.SetDefault("scoring.normalize", "minmax")
	v.SetDefault("scoring.output", "data/scores.csv")
	v.SetDefault("overall.cafe_weight", 2.0)
	v.SetDefault("overall.ping_weight", 1.0)
	v.SetDefault("overall.restaurant_weight", 3.0)
	v.SetDefault("overall.output", "data/overall_device_richness_scores.csv")
	v.SetDefault("store.path", "richness.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Delimiter converts a one-character config value to the rune the CSV layer
// expects. Empty falls back to def.
func Delimiter(s string, def rune) rune {
	r := []rune(s)
	if len(r) == 0 {
		return def
	}
	return r[0]
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
