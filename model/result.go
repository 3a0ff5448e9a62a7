package model

// DiagnosticKind classifies why part of an analysis was skipped or degraded.
type DiagnosticKind int

const (
	// DiagNoElements means a satellite had no orbital element usable for
	// the analysis window and contributed no opportunities.
	DiagNoElements DiagnosticKind = iota
	// DiagPropagationFailed means propagation failed for one satellite and
	// ground-point scan; that satellite contributed no opportunities there.
	DiagPropagationFailed
	// DiagMissingWeather means a target lacked cloud data for a required
	// hour; its delivery probability could not be computed.
	DiagMissingWeather
	// DiagNoCoverage means a target ended up with zero admissible images
	// and was assigned delivery probability 0.
	DiagNoCoverage
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagNoElements:
		return "no_elements"
	case DiagPropagationFailed:
		return "propagation_failed"
	case DiagMissingWeather:
		return "missing_weather"
	case DiagNoCoverage:
		return "no_coverage"
	default:
		return "unknown"
	}
}

// Diagnostic records one skipped or partial computation so callers can tell
// a clean zero from a degraded result.
type Diagnostic struct {
	Kind        DiagnosticKind
	SatelliteID string
	Target      string
	Detail      string
}

// DeliveryOutcome is the per-target result of an analysis.
type DeliveryOutcome struct {
	Target           string
	Probability      float64
	AdmissibleImages int
}

// AnalysisResult maps each target name to its delivery probability, alongside
// diagnostics for everything that was skipped on the way.
type AnalysisResult struct {
	RunID         string
	Probabilities map[string]float64
	Outcomes      []DeliveryOutcome
	Diagnostics   []Diagnostic
}
