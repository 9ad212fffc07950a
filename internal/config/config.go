package config

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mapforge/cartograph/internal/planet"
	"github.com/mapforge/cartograph/internal/projection"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Planet     PlanetConfig     `yaml:"planet" mapstructure:"planet"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PlanetConfig describes the planetary body the rasters belong to.
type PlanetConfig struct {
	RadiusKm             float64 `yaml:"radius_km" mapstructure:"radius_km"`
	SeaLevelM            float64 `yaml:"sea_level_m" mapstructure:"sea_level_m"`
	MaxElevationM        float64 `yaml:"max_elevation_m" mapstructure:"max_elevation_m"`
	NormalizedSeaLevel   float64 `yaml:"normalized_sea_level" mapstructure:"normalized_sea_level"`
	MaxPrecipitationRate float64 `yaml:"max_precipitation_rate" mapstructure:"max_precipitation_rate"`
	MaxSnowfallRate      float64 `yaml:"max_snowfall_rate" mapstructure:"max_snowfall_rate"`
}

// ProjectionConfig describes the output map projection. Angles are in
// degrees; they are converted to radians when building the projection.
type ProjectionConfig struct {
	CentralMeridianDeg  float64 `yaml:"central_meridian_deg" mapstructure:"central_meridian_deg"`
	CentralParallelDeg  float64 `yaml:"central_parallel_deg" mapstructure:"central_parallel_deg"`
	StandardParallelDeg float64 `yaml:"standard_parallel_deg" mapstructure:"standard_parallel_deg"`
	LatitudeRangeDeg    float64 `yaml:"latitude_range_deg" mapstructure:"latitude_range_deg"`
	EqualArea           bool    `yaml:"equal_area" mapstructure:"equal_area"`
}

// ClassifyConfig configures the classification pipeline.
type ClassifyConfig struct {
	VerticalResolution int `yaml:"vertical_resolution" mapstructure:"vertical_resolution"`
	Workers            int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
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
	v.SetEnvPrefix("CARTOGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "cartograph.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 10)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("classify.vertical_resolution", 360)
	v.SetDefault("classify.workers", 0)
	v.SetDefault("planet.radius_km", 6371)
	v.SetDefault("planet.max_elevation_m", 8800)
	v.SetDefault("planet.max_precipitation_rate", 2.0)
	v.SetDefault("planet.max_snowfall_rate", 0.5)
	v.SetDefault("projection.latitude_range_deg", 180)

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

// Validate checks the configuration fields required for the given mode
// ("generate", "serve", or "export") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if c.Planet.RadiusKm <= 0 {
		problems = append(problems, "planet.radius_km must be > 0")
	}
	if c.Planet.MaxElevationM <= 0 {
		problems = append(problems, "planet.max_elevation_m must be > 0")
	}
	if c.Projection.LatitudeRangeDeg <= 0 || c.Projection.LatitudeRangeDeg > 180 {
		problems = append(problems, "projection.latitude_range_deg must be in (0, 180]")
	}

	switch mode {
	case "generate":
		if c.Classify.VerticalResolution <= 0 {
			problems = append(problems, "classify.vertical_resolution must be > 0")
		}
		if c.Classify.Workers < 0 {
			problems = append(problems, "classify.workers must be >= 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
			problems = append(problems, "server rate limit must be > 0")
		}
	case "export":
		// No extra requirements beyond the store.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ToPlanet builds the planet model from configuration.
func (c PlanetConfig) ToPlanet() planet.Planet {
	return planet.Planet{
		Radius:             c.RadiusKm,
		SeaLevel:           c.SeaLevelM,
		MaxElevation:       c.MaxElevationM,
		NormalizedSeaLevel: c.NormalizedSeaLevel,
		Atmosphere: planet.Atmosphere{
			MaxPrecipitationRate: c.MaxPrecipitationRate,
			MaxSnowfallRate:      c.MaxSnowfallRate,
		},
	}
}

// ToProjection builds the projection from configuration, converting degrees
// to radians.
func (c ProjectionConfig) ToProjection() projection.Config {
	const radPerDeg = math.Pi / 180

	opts := []projection.Option{
		projection.WithStandardParallel(c.StandardParallelDeg * radPerDeg),
	}
	if c.LatitudeRangeDeg > 0 {
		opts = append(opts, projection.WithLatitudeRange(c.LatitudeRangeDeg*radPerDeg))
	}
	if c.EqualArea {
		opts = append(opts, projection.WithEqualArea())
	}

	return projection.NewConfig(
		c.CentralMeridianDeg*radPerDeg,
		c.CentralParallelDeg*radPerDeg,
		opts...,
	)
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
