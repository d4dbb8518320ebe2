package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/efreitasn/limitbook/internal/config"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/report"
	"github.com/efreitasn/limitbook/internal/sim"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	book := engine.NewOrderBook(engine.Options{
		InitialPrice: cfg.InitialPrice,
		PruneHour:    cfg.PruneHour,
		Logger:       logger.Named("engine"),
	})
	defer book.Close()

	simulator := sim.New(sim.Options{
		Book: book,
		Params: sim.Params{
			OrderFrequency:  cfg.OrderFrequency,
			OrderVolume:     cfg.OrderVolume,
			PriceVolatility: cfg.PriceVolatility,
		},
		Mode:     sim.Mode(cfg.SimMode),
		TickSize: cfg.TickSize,
		Seed:     cfg.Seed,
		Logger:   logger.Named("sim"),
	})

	reportOut, closeReport, err := openReportOutput(cfg.ReportPath)
	if err != nil {
		logger.Fatal("failed to open report output", zap.Error(err))
	}
	defer closeReport()

	job := &report.Job{
		Interval:  cfg.ReportInterval,
		Book:      book,
		Simulator: simulator,
		Writer:    report.NewWriter(reportOut),
		Logger:    logger.Named("report"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.RunDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.RunDuration)
		defer cancel()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		simulator.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		job.Run(ctx)
	}()

	logger.Info("limitbook running",
		zap.Int64("initial_price", cfg.InitialPrice),
		zap.Int("prune_hour", cfg.PruneHour),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("run duration elapsed")
	}

	cancel()
	wg.Wait()
	book.Close()

	final := simulator.Report()
	logger.Info("final market report",
		zap.Int64("current_price", final.CurrentPrice),
		zap.Int64("total_bid_quantity", final.TotalBidQuantity),
		zap.Int64("total_ask_quantity", final.TotalAskQuantity),
		zap.Int("bid_levels", final.BidLevels),
		zap.Int("ask_levels", final.AskLevels),
		zap.Int("trades", final.Trades),
		zap.String("state", string(final.State)),
	)
}

// newLogger builds a production JSON logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// openReportOutput returns the snapshot destination: a file when a
// path is configured, stdout otherwise.
func openReportOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
