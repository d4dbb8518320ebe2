package config

import (
	"testing"
	"time"
)

// clearEnv blanks every config key so Load sees only defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"LOG_LEVEL", "INITIAL_PRICE", "TICK_SIZE", "PRUNE_HOUR",
		"ORDER_FREQUENCY", "ORDER_VOLUME", "PRICE_VOLATILITY",
		"SIM_MODE", "SEED", "REPORT_INTERVAL", "REPORT_PATH", "RUN_DURATION",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %q", cfg.LogLevel)
	}
	if cfg.InitialPrice != 10000 || cfg.TickSize != 1 {
		t.Errorf("unexpected price defaults: %d/%d", cfg.InitialPrice, cfg.TickSize)
	}
	if cfg.PruneHour != 16 {
		t.Errorf("expected prune hour 16, got %d", cfg.PruneHour)
	}
	if cfg.OrderFrequency != 3 || cfg.OrderVolume != 3 || cfg.PriceVolatility != 3 {
		t.Errorf("unexpected sim defaults: %d/%d/%d", cfg.OrderFrequency, cfg.OrderVolume, cfg.PriceVolatility)
	}
	if cfg.SimMode != "normal" {
		t.Errorf("expected normal mode, got %q", cfg.SimMode)
	}
	if cfg.ReportInterval != 5*time.Second {
		t.Errorf("expected 5s report interval, got %v", cfg.ReportInterval)
	}
	if cfg.RunDuration != 0 {
		t.Errorf("expected unbounded run, got %v", cfg.RunDuration)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("INITIAL_PRICE", "25000")
	t.Setenv("PRUNE_HOUR", "17")
	t.Setenv("ORDER_FREQUENCY", "5")
	t.Setenv("SIM_MODE", "reactive")
	t.Setenv("REPORT_INTERVAL", "500ms")
	t.Setenv("RUN_DURATION", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.InitialPrice != 25000 || cfg.PruneHour != 17 {
		t.Errorf("custom values not applied: %+v", cfg)
	}
	if cfg.OrderFrequency != 5 || cfg.SimMode != "reactive" {
		t.Errorf("custom sim values not applied: %+v", cfg)
	}
	if cfg.ReportInterval != 500*time.Millisecond || cfg.RunDuration != time.Minute {
		t.Errorf("custom durations not applied: %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"non-numeric price", "INITIAL_PRICE", "ten"},
		{"negative price", "INITIAL_PRICE", "-5"},
		{"zero tick", "TICK_SIZE", "0"},
		{"hour too large", "PRUNE_HOUR", "24"},
		{"hour negative", "PRUNE_HOUR", "-1"},
		{"frequency too large", "ORDER_FREQUENCY", "6"},
		{"frequency zero", "ORDER_FREQUENCY", "0"},
		{"volume out of range", "ORDER_VOLUME", "9"},
		{"volatility out of range", "PRICE_VOLATILITY", "0"},
		{"bad sim mode", "SIM_MODE", "chaotic"},
		{"bad interval", "REPORT_INTERVAL", "soon"},
		{"bad duration", "RUN_DURATION", "forever"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
