// Package metrics exposes prometheus collectors for chat turns and the intimacy engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tsukuyomi"

// Fallback reasons.
const (
	ReasonJudgeError = "judge_error"
	ReasonJudgeZero  = "judge_zero"
)

// Extraction strategies.
const (
	StrategyModel   = "model"
	StrategyPattern = "pattern"
)

// TTS results.
const (
	TTSOK      = "ok"
	TTSSkipped = "skipped"
	TTSError   = "error"
)

// Recorder owns a registry and the collectors registered on it.
// A nil *Recorder records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	turns      prometheus.Counter
	fallbacks  *prometheus.CounterVec
	change     prometheus.Histogram
	factsAdded prometheus.Counter
	extraction *prometheus.CounterVec
	tts        *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry with the Go and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns processed by the intimacy engine.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intimacy_fallback_total",
			Help:      "Turns where the keyword heuristic replaced the judge delta.",
		}, []string{"reason"}),
		change: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "intimacy_change",
			Help:      "Clamped total intimacy change per turn.",
			Buckets:   []float64{-2, -1, 0, 1, 2},
		}),
		factsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facts_added_total",
			Help:      "New facts appended to long-term memory.",
		}),
		extraction: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_extraction_total",
			Help:      "Fact extractions by the strategy that produced the facts.",
		}, []string{"strategy"}),
		tts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_total",
			Help:      "Speech synthesis attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.turns,
		r.fallbacks,
		r.change,
		r.factsAdded,
		r.extraction,
		r.tts,
	)
	return r
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Turn(totalChange int) {
	if r == nil {
		return
	}
	r.turns.Inc()
	r.change.Observe(float64(totalChange))
}

func (r *Recorder) Fallback(reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(reason).Inc()
}

func (r *Recorder) FactsAdded(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.factsAdded.Add(float64(n))
}

func (r *Recorder) Extraction(strategy string) {
	if r == nil {
		return
	}
	r.extraction.WithLabelValues(strategy).Inc()
}

func (r *Recorder) TTS(result string) {
	if r == nil {
		return
	}
	r.tts.WithLabelValues(result).Inc()
}
