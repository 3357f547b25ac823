package triples

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triple generation subsystem.
type Metrics struct {
	GenerationsTotal *prometheus.CounterVec
	TriplesPerSet    prometheus.Histogram
	NormalizedShapes *prometheus.CounterVec
	SynonymFetches   *prometheus.CounterVec
	LLMCallsTotal    prometheus.Counter
	LLMTokensIn      prometheus.Counter
	LLMTokensOut     prometheus.Counter
	LLMDuration      prometheus.Histogram
}

// NewMetrics registers and returns triple metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripled_generations_total",
			Help: "Total generation requests by action and outcome.",
		}, []string{"action", "outcome"}),
		TriplesPerSet: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripled_triples_per_set",
			Help:    "Rows produced per generation.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9), // 1 .. 256
		}),
		NormalizedShapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripled_normalized_shapes_total",
			Help: "Reply shapes seen by the normalizer cascade.",
		}, []string{"shape"}),
		SynonymFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripled_synonym_fetches_total",
			Help: "Synonym fetches per attribute field by outcome.",
		}, []string{"outcome"}),
		LLMCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripled_llm_calls_total",
			Help: "Total LLM provider calls.",
		}),
		LLMTokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripled_llm_tokens_input_total",
			Help: "Total LLM input tokens consumed.",
		}),
		LLMTokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripled_llm_tokens_output_total",
			Help: "Total LLM output tokens consumed.",
		}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripled_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}),
	}

	reg.MustRegister(
		m.GenerationsTotal,
		m.TriplesPerSet,
		m.NormalizedShapes,
		m.SynonymFetches,
		m.LLMCallsTotal,
		m.LLMTokensIn,
		m.LLMTokensOut,
		m.LLMDuration,
	)

	return m
}

func (m *Metrics) observeLLMCall(u Usage, seconds float64) {
	if m == nil {
		return
	}
	m.LLMCallsTotal.Inc()
	m.LLMTokensIn.Add(float64(u.InputTokens))
	m.LLMTokensOut.Add(float64(u.OutputTokens))
	m.LLMDuration.Observe(seconds)
}

func (m *Metrics) observeGeneration(action, outcome string, rows int, shape Shape) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(action, outcome).Inc()
	if outcome == "ok" {
		m.TriplesPerSet.Observe(float64(rows))
		m.NormalizedShapes.WithLabelValues(string(shape)).Inc()
	}
}

func (m *Metrics) observeSynonymFetch(outcome string) {
	if m == nil {
		return
	}
	m.SynonymFetches.WithLabelValues(outcome).Inc()
}
