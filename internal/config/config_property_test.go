package config

import (
	"fmt"
	"os"
	"testing"

	"pgregory.net/rapid"
)

var allEnvKeys = []string{
	"LOG_LEVEL", "INITIAL_PRICE", "TICK_SIZE", "PRUNE_HOUR",
	"ORDER_FREQUENCY", "ORDER_VOLUME", "PRICE_VOLATILITY",
	"SIM_MODE", "SEED", "REPORT_INTERVAL", "REPORT_PATH", "RUN_DURATION",
}

func unsetAllConfigEnv() {
	for _, key := range allEnvKeys {
		os.Unsetenv(key)
	}
}

func TestProperty_ValidConfigAlwaysLoads(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		frequency := rapid.IntRange(1, 5).Draw(t, "frequency")
		volume := rapid.IntRange(1, 5).Draw(t, "volume")
		volatility := rapid.IntRange(1, 5).Draw(t, "volatility")
		pruneHour := rapid.IntRange(0, 23).Draw(t, "pruneHour")
		initialPrice := rapid.Int64Range(1, 1_000_000).Draw(t, "initialPrice")

		os.Setenv("ORDER_FREQUENCY", fmt.Sprintf("%d", frequency))
		os.Setenv("ORDER_VOLUME", fmt.Sprintf("%d", volume))
		os.Setenv("PRICE_VOLATILITY", fmt.Sprintf("%d", volatility))
		os.Setenv("PRUNE_HOUR", fmt.Sprintf("%d", pruneHour))
		os.Setenv("INITIAL_PRICE", fmt.Sprintf("%d", initialPrice))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("valid config failed to load: %v", err)
		}
		if cfg.OrderFrequency != frequency || cfg.OrderVolume != volume || cfg.PriceVolatility != volatility {
			t.Fatalf("sim params not round-tripped: %+v", cfg)
		}
		if cfg.PruneHour != pruneHour || cfg.InitialPrice != initialPrice {
			t.Fatalf("book params not round-tripped: %+v", cfg)
		}
	})
}

func TestProperty_OutOfRangeSimParamsRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		key := rapid.SampledFrom([]string{"ORDER_FREQUENCY", "ORDER_VOLUME", "PRICE_VOLATILITY"}).Draw(t, "key")
		value := rapid.OneOf(
			rapid.IntRange(-100, 0),
			rapid.IntRange(6, 100),
		).Draw(t, "value")

		os.Setenv(key, fmt.Sprintf("%d", value))

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for %s=%d", key, value)
		}
	})
}
