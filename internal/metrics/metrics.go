// Package metrics exposes Prometheus counters and histograms for checker
// outcomes. Each Metrics owns a private registry so tests and embedded uses
// never collide on the global one.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/trustgate/internal/model"
)

const namespace = "trustgate"

// Metrics holds every collector the CLI reports
type Metrics struct {
	registry *prometheus.Registry

	citations        *prometheus.CounterVec
	citationDuration prometheus.Histogram
	citationScore    prometheus.Histogram
	assessments      *prometheus.CounterVec
	qaScore          prometheus.Histogram
	facts            *prometheus.CounterVec
	voiceChecks      *prometheus.CounterVec
	ruleOutcomes     *prometheus.CounterVec
}

// New creates a Metrics with its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		citations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "results_total",
			Help:      "Citations verified, by verdict and first issue",
		}, []string{"verified", "issue"}),
		citationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "duration_seconds",
			Help:      "Time spent verifying one citation",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		citationScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "score",
			Help:      "Citation scores (0-100)",
			Buckets:   prometheus.LinearBuckets(0, 20, 6),
		}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assess",
			Name:      "total",
			Help:      "Content assessments, by pass/fail",
		}, []string{"passed"}),
		qaScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assess",
			Name:      "qa_score",
			Help:      "QA scores (0-100)",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		facts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "facts",
			Name:      "verifications_total",
			Help:      "Extracted facts, by type and failure kind",
		}, []string{"type", "failure"}),
		voiceChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voice",
			Name:      "checks_total",
			Help:      "Voice checks, by target voice and pass/fail",
		}, []string{"voice", "passed"}),
		ruleOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "outcomes_total",
			Help:      "Rule evaluations, by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.citations,
		m.citationDuration,
		m.citationScore,
		m.assessments,
		m.qaScore,
		m.facts,
		m.voiceChecks,
		m.ruleOutcomes,
	)
	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCitation records one citation result. Its signature matches
// citation.Options.OnResult.
func (m *Metrics) ObserveCitation(r model.CitationResult) {
	issue := "none"
	if len(r.Issues) > 0 {
		issue = r.Issues[0]
	}
	m.citations.WithLabelValues(strconv.FormatBool(r.Verified), issue).Inc()
	m.citationDuration.Observe(r.Duration.Seconds())
	m.citationScore.Observe(float64(r.Score))
}

// ObserveAssessment records one content assessment
func (m *Metrics) ObserveAssessment(a model.ContentAssessment) {
	m.assessments.WithLabelValues(strconv.FormatBool(a.Passed)).Inc()
	m.qaScore.Observe(float64(a.QAScore))
}

// ObserveFacts records every fact verification in a summary
func (m *Metrics) ObserveFacts(s model.VerificationSummary) {
	for _, v := range s.VerificationResults {
		failure := string(v.Failure)
		if failure == "" {
			failure = "none"
		}
		m.facts.WithLabelValues(string(v.Fact.Type), failure).Inc()
	}
}

// ObserveVoice records one voice check
func (m *Metrics) ObserveVoice(r model.ConsistencyReport) {
	m.voiceChecks.WithLabelValues(string(r.TargetVoice), strconv.FormatBool(r.Passed)).Inc()
}

// ObserveRule records one rule evaluation outcome
func (m *Metrics) ObserveRule(o model.CheckOutcome) {
	result := "failed"
	switch {
	case o.Skipped:
		result = "skipped"
	case o.Passed:
		result = "passed"
	}
	m.ruleOutcomes.WithLabelValues(result).Inc()
}
