package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	stageTotal    *prom.CounterVec
	stageSeconds  *prom.HistogramVec
	processTotal  *prom.CounterVec
	processErrors prom.Counter
}

func (p *promRecorder) IncStageTotal(processor string, stage string, success bool) {
	p.stageTotal.WithLabelValues(processor, stage, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveStageSeconds(processor string, stage string, success bool, seconds float64) {
	p.stageSeconds.WithLabelValues(processor, stage, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncProcessTotal(ok bool) {
	p.processTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (p *promRecorder) AddProcessErrors(count int) {
	p.processErrors.Add(float64(count))
}

// NewPrometheusRecorder creates a recorder and registers its collectors
func NewPrometheusRecorder(registry prom.Registerer) (Recorder, error) {
	p := &promRecorder{
		stageTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "cataloger_processor_stage_total",
			Help: "Total number of processor stage invocations",
		}, []string{"processor", "stage", "success"}),
		stageSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "cataloger_processor_stage_seconds",
			Help:    "Processor stage duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"processor", "stage", "success"}),
		processTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "cataloger_process_total",
			Help: "Total number of processed entities",
		}, []string{"ok"}),
		processErrors: prom.NewCounter(prom.CounterOpts{
			Name: "cataloger_process_errors_total",
			Help: "Total number of non-fatal and fatal processing errors",
		}),
	}

	for _, c := range []prom.Collector{p.stageTotal, p.stageSeconds, p.processTotal, p.processErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p, err := NewPrometheusRecorder(registry)
	if err != nil {
		return err
	}
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return nil
}
