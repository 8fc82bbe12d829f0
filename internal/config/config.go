package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"vectralab/domain/verdict"
	"vectralab/internal/errors"
)

// Defaults applied when the environment leaves a key unset.
const (
	DefaultBinWidth           = 300.0
	DefaultChauvenetThreshold = 0.5
	DefaultDataDir            = "data"
	DefaultSheet              = "Sheet1"
	DefaultMaxIterations      = 20
	DefaultWorkers            = 4
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Data     DataConfig
	LogLevel string
}

// AnalysisConfig holds the thresholds and parameters of the statistical engine
type AnalysisConfig struct {
	BinWidth           float64 // seconds
	Alpha              float64
	ChauvenetThreshold float64
	MaxIterations      int
	Workers            int
}

// DataConfig holds where channel files are read from
type DataConfig struct {
	Dir   string
	Sheet string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	analysis, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}

	config := &Config{
		Analysis: *analysis,
		Data:     *loadDataConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			BinWidth:           DefaultBinWidth,
			Alpha:              verdict.DefaultAlpha,
			ChauvenetThreshold: DefaultChauvenetThreshold,
			MaxIterations:      DefaultMaxIterations,
			Workers:            DefaultWorkers,
		},
		Data: DataConfig{
			Dir:   DefaultDataDir,
			Sheet: DefaultSheet,
		},
		LogLevel: "INFO",
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	binWidth, err := parseFloatEnv("VECTRALAB_BIN_WIDTH", DefaultBinWidth)
	if err != nil {
		return nil, err
	}
	alpha, err := parseFloatEnv("VECTRALAB_ALPHA", verdict.DefaultAlpha)
	if err != nil {
		return nil, err
	}
	threshold, err := parseFloatEnv("VECTRALAB_CHAUVENET_THRESHOLD", DefaultChauvenetThreshold)
	if err != nil {
		return nil, err
	}

	maxIterations, err := parseIntEnv("VECTRALAB_MAX_ITERATIONS", DefaultMaxIterations)
	if err != nil {
		return nil, err
	}
	workers, err := parseIntEnv("VECTRALAB_WORKERS", DefaultWorkers)
	if err != nil {
		return nil, err
	}

	return &AnalysisConfig{
		BinWidth:           binWidth,
		Alpha:              alpha,
		ChauvenetThreshold: threshold,
		MaxIterations:      maxIterations,
		Workers:            workers,
	}, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Dir:   getEnvOrDefault("VECTRALAB_DATA_DIR", DefaultDataDir),
		Sheet: getEnvOrDefault("VECTRALAB_SHEET", DefaultSheet),
	}
}

// Validate checks every field that the analysis would otherwise reject later.
func Validate(config *Config) error {
	a := config.Analysis
	if !(a.BinWidth > 0) || math.IsInf(a.BinWidth, 0) {
		return errors.ConfigInvalid(fmt.Sprintf("bin width must be positive, got %v", a.BinWidth))
	}
	if !(a.Alpha > 0 && a.Alpha < 1) {
		return errors.ConfigInvalid(fmt.Sprintf("alpha must be in (0, 1), got %v", a.Alpha))
	}
	if !(a.ChauvenetThreshold > 0) || math.IsInf(a.ChauvenetThreshold, 0) {
		return errors.ConfigInvalid(fmt.Sprintf("chauvenet threshold must be positive, got %v", a.ChauvenetThreshold))
	}
	if a.MaxIterations < 1 {
		return errors.ConfigInvalid("max iterations must be at least 1")
	}
	if a.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	if config.Data.Sheet == "" {
		return errors.ConfigInvalid("sheet name is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not an integer", key, value))
	}
	return intValue, nil
}

// parseFloatEnv rejects malformed values instead of silently using the default,
// since thresholds change verdicts.
func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s=%q is not a number", key, value))
	}
	return floatValue, nil
}
