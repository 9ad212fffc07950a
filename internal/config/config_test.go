package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "cartograph.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 360, cfg.Classify.VerticalResolution)
	assert.Equal(t, 0, cfg.Classify.Workers)
	assert.InDelta(t, 6371, cfg.Planet.RadiusKm, 0.001)
	assert.InDelta(t, 8800, cfg.Planet.MaxElevationM, 0.001)
	assert.InDelta(t, 2.0, cfg.Planet.MaxPrecipitationRate, 0.001)
	assert.InDelta(t, 180, cfg.Projection.LatitudeRangeDeg, 0.001)
	assert.False(t, cfg.Projection.EqualArea)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/cartograph
log:
  level: debug
  format: console
projection:
  standard_parallel_deg: 30
  equal_area: true
classify:
  vertical_resolution: 720
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Projection.EqualArea)
	assert.InDelta(t, 30, cfg.Projection.StandardParallelDeg, 0.001)
	assert.Equal(t, 720, cfg.Classify.VerticalResolution)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CARTOGRAPH_STORE_DRIVER", "postgres")
	t.Setenv("CARTOGRAPH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("CARTOGRAPH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestToProjectionConvertsDegrees(t *testing.T) {
	pc := ProjectionConfig{
		CentralMeridianDeg:  90,
		StandardParallelDeg: 30,
		LatitudeRangeDeg:    180,
		EqualArea:           true,
	}

	cfg := pc.ToProjection()
	assert.InDelta(t, math.Pi/2, cfg.CentralMeridian, 1e-9)
	assert.InDelta(t, math.Pi/6, cfg.StandardParallel, 1e-9)
	assert.InDelta(t, math.Pi, cfg.Range(), 1e-9)
	assert.True(t, cfg.EqualArea)
	assert.InDelta(t, math.Cos(math.Pi/6), cfg.ScaleFactor(), 1e-9)
}

func TestToPlanet(t *testing.T) {
	pc := PlanetConfig{
		RadiusKm:             6371,
		MaxElevationM:        8800,
		MaxPrecipitationRate: 2.0,
		MaxSnowfallRate:      0.5,
	}

	p := pc.ToPlanet()
	assert.InDelta(t, 6371, p.Radius, 0.001)
	assert.InDelta(t, 8800, p.MaxElevation, 0.001)
	assert.InDelta(t, 2.0, p.Atmosphere.MaxPrecipitationRate, 0.001)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config that passes validation for every mode.
func validDefaults() *Config {
	return &Config{
		Store:      StoreConfig{Driver: "sqlite", Path: "test.db"},
		Planet:     PlanetConfig{RadiusKm: 6371, MaxElevationM: 8800},
		Projection: ProjectionConfig{LatitudeRangeDeg: 180},
		Classify:   ClassifyConfig{VerticalResolution: 360},
		Server:     ServerConfig{Port: 8080, RateLimitRPS: 10, RateLimitBurst: 20},
	}
}

func TestValidateGenerate_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("generate"))
}

func TestValidateGenerate_BadResolution(t *testing.T) {
	cfg := validDefaults()
	cfg.Classify.VerticalResolution = 0

	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertical_resolution")
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateLatitudeRange(t *testing.T) {
	cfg := validDefaults()
	cfg.Projection.LatitudeRangeDeg = 200

	err := cfg.Validate("export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude_range_deg")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
