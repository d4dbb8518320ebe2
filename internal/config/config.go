package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the limit order book
// binary. Prices are in cents.
type Config struct {
	LogLevel        string
	InitialPrice    int64
	TickSize        int64
	PruneHour       int
	OrderFrequency  int
	OrderVolume     int
	PriceVolatility int
	SimMode         string
	Seed            int64
	ReportInterval  time.Duration
	ReportPath      string
	RunDuration     time.Duration // 0 = run until a signal arrives
}

// Load reads configuration from environment variables, applies
// defaults, and validates values. It returns an error for any invalid
// value.
func Load() (*Config, error) {
	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	initialPrice, err := getInt64("INITIAL_PRICE", 10000)
	if err != nil {
		return nil, fmt.Errorf("invalid INITIAL_PRICE: %w", err)
	}
	if initialPrice <= 0 {
		return nil, fmt.Errorf("invalid INITIAL_PRICE: must be positive, got %d", initialPrice)
	}

	tickSize, err := getInt64("TICK_SIZE", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_SIZE: %w", err)
	}
	if tickSize <= 0 {
		return nil, fmt.Errorf("invalid TICK_SIZE: must be positive, got %d", tickSize)
	}

	pruneHour, err := getInt("PRUNE_HOUR", 16)
	if err != nil {
		return nil, fmt.Errorf("invalid PRUNE_HOUR: %w", err)
	}
	if pruneHour < 0 || pruneHour > 23 {
		return nil, fmt.Errorf("invalid PRUNE_HOUR: must be 0-23, got %d", pruneHour)
	}

	orderFrequency, err := getSimParam("ORDER_FREQUENCY", 3)
	if err != nil {
		return nil, err
	}
	orderVolume, err := getSimParam("ORDER_VOLUME", 3)
	if err != nil {
		return nil, err
	}
	priceVolatility, err := getSimParam("PRICE_VOLATILITY", 3)
	if err != nil {
		return nil, err
	}

	simMode := getStr("SIM_MODE", "normal")
	if simMode != "normal" && simMode != "reactive" {
		return nil, fmt.Errorf("invalid SIM_MODE: %q, must be normal or reactive", simMode)
	}

	seed, err := getInt64("SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	reportInterval, err := getDuration("REPORT_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_INTERVAL: %w", err)
	}

	runDuration, err := getDuration("RUN_DURATION", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_DURATION: %w", err)
	}

	return &Config{
		LogLevel:        logLevel,
		InitialPrice:    initialPrice,
		TickSize:        tickSize,
		PruneHour:       pruneHour,
		OrderFrequency:  orderFrequency,
		OrderVolume:     orderVolume,
		PriceVolatility: priceVolatility,
		SimMode:         simMode,
		Seed:            seed,
		ReportInterval:  reportInterval,
		ReportPath:      getStr("REPORT_PATH", ""),
		RunDuration:     runDuration,
	}, nil
}

// getSimParam reads one of the 1-5 simulation tuning knobs.
func getSimParam(key string, defaultVal int) (int, error) {
	v, err := getInt(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 1 || v > 5 {
		return 0, fmt.Errorf("invalid %s: must be 1-5, got %d", key, v)
	}
	return v, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
