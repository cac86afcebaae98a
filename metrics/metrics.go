// Package metrics provides a minimal instrumentation interface with a no-op
// default and an optional Prometheus-backed implementation enabled via env.
package metrics

import (
	"os"
	"sync"
	"time"
)

// Recorder defines the metrics surface used by the processing pipeline
type Recorder interface {
	IncStageTotal(processor string, stage string, success bool)
	ObserveStageSeconds(processor string, stage string, success bool, seconds float64)
	IncProcessTotal(ok bool)
	AddProcessErrors(count int)
}

type noopRecorder struct{}

func (n *noopRecorder) IncStageTotal(string, string, bool)                {}
func (n *noopRecorder) ObserveStageSeconds(string, string, bool, float64) {}
func (n *noopRecorder) IncProcessTotal(bool)                              {}
func (n *noopRecorder) AddProcessErrors(int)                              {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
// A nil recorder restores the no-op recorder.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = &noopRecorder{}
	}
	recorder = r
}

// TimeStage times one processor stage invocation
func TimeStage(processor string, stage string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncStageTotal(processor, stage, success)
		Default().ObserveStageSeconds(processor, stage, success, dur)
	}
}

// RecordProcess records the outcome of one processing run
func RecordProcess(ok bool, errorCount int) {
	Default().IncProcessTotal(ok)
	if errorCount > 0 {
		Default().AddProcessErrors(errorCount)
	}
}

// InitFromEnv enables the Prometheus exporter if METRICS_PROMETHEUS is set.
// It serves /metrics and /healthz on METRICS_ADDR (default :9090).
func InitFromEnv() {
	if os.Getenv("METRICS_PROMETHEUS") == "" {
		return
	}
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	_ = enablePrometheus(addr)
}
