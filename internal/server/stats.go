package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/atomic"

	"github.com/Rohitrajak1807/tinyhttpd/internal/handler"
)

const maxTrackedLatency = time.Minute

// Stats counts connections by outcome and keeps a latency histogram.
type Stats struct {
	accepted atomic.Int64
	panics   atomic.Int64
	outcomes sync.Map // handler.Outcome -> *atomic.Int64

	mu      sync.Mutex
	latency *hdrhistogram.Histogram
}

type Snapshot struct {
	Accepted int64
	Panics   int64
	Outcomes map[string]int64
	P50      time.Duration
	P99      time.Duration
	Max      time.Duration
}

func NewStats() *Stats {
	return &Stats{
		latency: hdrhistogram.New(1, maxTrackedLatency.Microseconds(), 3),
	}
}

func (s *Stats) Accepted() { s.accepted.Inc() }
func (s *Stats) Panicked() { s.panics.Inc() }

// Record counts one finished connection. Latencies beyond the histogram
// range are clamped to its maximum.
func (s *Stats) Record(o handler.Outcome, d time.Duration) {
	c, _ := s.outcomes.LoadOrStore(o, atomic.NewInt64(0))
	c.(*atomic.Int64).Inc()

	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxTrackedLatency.Microseconds() {
		us = maxTrackedLatency.Microseconds()
	}
	s.mu.Lock()
	_ = s.latency.RecordValue(us)
	s.mu.Unlock()
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Accepted: s.accepted.Load(),
		Panics:   s.panics.Load(),
		Outcomes: map[string]int64{},
	}
	s.outcomes.Range(func(k, v any) bool {
		snap.Outcomes[k.(handler.Outcome).String()] = v.(*atomic.Int64).Load()
		return true
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latency.TotalCount() > 0 {
		snap.P50 = time.Duration(s.latency.ValueAtQuantile(50)) * time.Microsecond
		snap.P99 = time.Duration(s.latency.ValueAtQuantile(99)) * time.Microsecond
		snap.Max = time.Duration(s.latency.Max()) * time.Microsecond
	}
	return snap
}

func (s *Stats) Log() {
	snap := s.Snapshot()
	attrs := []any{
		"accepted", snap.Accepted,
		"panics", snap.Panics,
		"p50", snap.P50,
		"p99", snap.P99,
		"max", snap.Max,
	}
	for k, v := range snap.Outcomes {
		attrs = append(attrs, k, v)
	}
	slog.Info("server stats", attrs...)
}
