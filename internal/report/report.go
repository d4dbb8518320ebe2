// Package report writes periodic order book snapshots as JSON lines,
// for offline inspection of a simulation run.
package report

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/sim"
)

// Snapshot is one reported view of the book and the simulated market.
type Snapshot struct {
	Timestamp time.Time          `json:"ts"`
	MidPrice  int64              `json:"mid_price"`
	Bids      []domain.LevelInfo `json:"bids"`
	Asks      []domain.LevelInfo `json:"asks"`
	Market    sim.Report         `json:"market"`
}

// Writer encodes snapshots as JSON lines to an underlying writer.
// Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriter creates a Writer targeting w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one snapshot line.
func (w *Writer) Write(snap Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(snap)
}

// Job periodically snapshots a book and simulator into a Writer.
type Job struct {
	Interval  time.Duration
	Book      *engine.OrderBook
	Simulator *sim.Simulator
	Writer    *Writer
	Clock     engine.Clock
	Logger    *zap.Logger
}

// Run emits a snapshot every interval until ctx is cancelled, plus a
// final one on the way out.
func (j *Job) Run(ctx context.Context) {
	clock := j.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	log := j.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for {
		select {
		case <-ctx.Done():
			if err := j.snapshot(clock); err != nil {
				log.Error("final snapshot failed", zap.Error(err))
			}
			return
		case <-clock.After(j.Interval):
		}

		if err := j.snapshot(clock); err != nil {
			log.Error("snapshot failed", zap.Error(err))
		}
	}
}

func (j *Job) snapshot(clock engine.Clock) error {
	bids, asks := j.Book.LevelInfos()
	return j.Writer.Write(Snapshot{
		Timestamp: clock.Now(),
		MidPrice:  j.Book.MidPrice(),
		Bids:      bids,
		Asks:      asks,
		Market:    j.Simulator.Report(),
	})
}
