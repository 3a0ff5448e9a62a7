package model

import "time"

// CloudSampleRule selects which hourly cloud sample represents an opportunity
// that may span more than one hour.
type CloudSampleRule string

const (
	CloudSampleMidpoint CloudSampleRule = "midpoint"
	CloudSampleStart    CloudSampleRule = "start"
	CloudSampleWorst    CloudSampleRule = "worst"
)

// AnalysisConfig carries every tunable of one analysis run. It is built once,
// validated before any computation starts, and threaded through the engine as
// an immutable value; components never reach for ambient state.
type AnalysisConfig struct {
	// TFinal is the deadline by which processed data must be available.
	TFinal time.Time
	// MaxAge bounds how old captured imagery may be; the analysis window is
	// [TFinal-MaxAge, TFinal].
	MaxAge time.Duration

	// CloudThreshold is the maximum acceptable cloud fraction, inclusive.
	CloudThreshold float64
	// CloudSample picks the representative hour of a multi-hour opportunity.
	CloudSample CloudSampleRule

	// TMin and TMax bound, relative to capture end, the start times of
	// gateway passes considered usable for downloading an image.
	TMin time.Duration
	TMax time.Duration

	// DownloadFreq retains every Nth gateway pass as actually usable for
	// download; 1 keeps every pass.
	DownloadFreq int
	// MaxDownloadsConsidered caps how many candidate passes an image is
	// spread across.
	MaxDownloadsConsidered int
	// DownloadProbability maps a candidate-pass count N to the probability,
	// by rank, that each pass is the one used. Each row sums to at most 1;
	// the shortfall is the probability the image is never downloaded.
	DownloadProbability map[int][]float64

	// SampleStep is the coarse contact-detection step.
	SampleStep time.Duration
	// MaxPropagationAge is how far from an element's epoch propagation is
	// still trusted.
	MaxPropagationAge time.Duration

	// Workers bounds detection concurrency; 0 means one per CPU.
	Workers int
}

// Window returns the analysis window [TFinal-MaxAge, TFinal].
func (c AnalysisConfig) Window() (start, end time.Time) {
	return c.TFinal.Add(-c.MaxAge), c.TFinal
}

// ValueTime is the reference time used to pick each satellite's authoritative
// orbital element: the midpoint of the analysis window.
func (c AnalysisConfig) ValueTime() time.Time {
	start, end := c.Window()
	return start.Add(end.Sub(start) / 2)
}
