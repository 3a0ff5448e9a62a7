package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics bundles Prometheus metrics for the coverage engine. All
// methods tolerate a nil receiver so the engine can run unmetered.
type EngineMetrics struct {
	gatherer prometheus.Gatherer

	AnalysesTotal       prometheus.Counter
	AnalysisDuration    prometheus.Histogram
	ContactsDetected    *prometheus.CounterVec
	PropagationFailures prometheus.Counter
	TargetsSkipped      *prometheus.CounterVec
}

// NewEngineMetrics registers engine metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil. Re-registration of
// identical collectors is tolerated.
func NewEngineMetrics(reg prometheus.Registerer) (*EngineMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	analyses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_analyses_total",
		Help: "Total number of completed coverage analyses.",
	}), "coverage_analyses_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverage_analysis_duration_seconds",
		Help:    "Wall-clock duration of one coverage analysis.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	duration, err = registerHistogram(reg, duration, "coverage_analysis_duration_seconds")
	if err != nil {
		return nil, err
	}

	contacts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_contacts_detected_total",
		Help: "Contact opportunities detected, labeled by kind (download or image).",
	}, []string{"kind"})
	contacts, err = registerCounterVec(reg, contacts, "coverage_contacts_detected_total")
	if err != nil {
		return nil, err
	}

	propFailures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_propagation_failures_total",
		Help: "Contact scans dropped because orbit propagation failed.",
	}), "coverage_propagation_failures_total")
	if err != nil {
		return nil, err
	}

	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_targets_skipped_total",
		Help: "Targets with degraded results, labeled by reason.",
	}, []string{"reason"})
	skipped, err = registerCounterVec(reg, skipped, "coverage_targets_skipped_total")
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		gatherer:            gatherer,
		AnalysesTotal:       analyses,
		AnalysisDuration:    duration,
		ContactsDetected:    contacts,
		PropagationFailures: propFailures,
		TargetsSkipped:      skipped,
	}, nil
}

// ObserveAnalysis records one completed analysis and its duration.
func (m *EngineMetrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

// AddContacts counts detected contact opportunities of one kind.
func (m *EngineMetrics) AddContacts(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ContactsDetected.WithLabelValues(kind).Add(float64(n))
}

// IncPropagationFailure counts one dropped contact scan.
func (m *EngineMetrics) IncPropagationFailure() {
	if m == nil {
		return
	}
	m.PropagationFailures.Inc()
}

// IncTargetSkipped counts one degraded target result.
func (m *EngineMetrics) IncTargetSkipped(reason string) {
	if m == nil {
		return
	}
	m.TargetsSkipped.WithLabelValues(reason).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (m *EngineMetrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
