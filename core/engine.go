package core

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/coverage-engine/internal/logging"
	"github.com/signalsfoundry/coverage-engine/internal/observability"
	"github.com/signalsfoundry/coverage-engine/kb"
	"github.com/signalsfoundry/coverage-engine/model"
)

const tracerName = "coverage-engine/core"

// weightSumTolerance absorbs float accumulation noise when checking that a
// probability row sums to at most 1.
const weightSumTolerance = 1e-9

// ValidateConfig checks an analysis configuration before any computation
// starts. Violations are fatal for the whole run.
func ValidateConfig(cfg model.AnalysisConfig) error {
	if cfg.TFinal.IsZero() {
		return &ConfigurationError{Field: "t_final", Reason: "must be set"}
	}
	if cfg.MaxAge <= 0 {
		return &ConfigurationError{Field: "max_age", Reason: "must be positive"}
	}
	if cfg.CloudThreshold < 0 || cfg.CloudThreshold > 1 {
		return &ConfigurationError{Field: "cloud_threshold", Reason: "must be within [0,1]"}
	}
	if cfg.TMin > cfg.TMax {
		return &ConfigurationError{Field: "t_min", Reason: "must not exceed t_max"}
	}
	if cfg.DownloadFreq < 1 {
		return &ConfigurationError{Field: "download_freq", Reason: "must be at least 1"}
	}
	if cfg.MaxDownloadsConsidered < 1 {
		return &ConfigurationError{Field: "max_downloads_considered", Reason: "must be at least 1"}
	}
	switch cfg.CloudSample {
	case "", model.CloudSampleMidpoint, model.CloudSampleStart, model.CloudSampleWorst:
	default:
		return &ConfigurationError{Field: "cloud_sample", Reason: fmt.Sprintf("unknown rule %q", cfg.CloudSample)}
	}
	for n, weights := range cfg.DownloadProbability {
		if n < 1 {
			return &ConfigurationError{
				Field:  "download_probability",
				Reason: fmt.Sprintf("key %d must be at least 1", n),
			}
		}
		sum := 0.0
		for _, w := range weights {
			if w < 0 {
				return &ConfigurationError{
					Field:  "download_probability",
					Reason: fmt.Sprintf("key %d has a negative weight", n),
				}
			}
			sum += w
		}
		if sum > 1+weightSumTolerance {
			return &ConfigurationError{
				Field:  "download_probability",
				Reason: fmt.Sprintf("weights for key %d sum to %v, must not exceed 1", n, sum),
			}
		}
	}
	return nil
}

// Engine runs the coverage-and-delivery probability analysis. All inputs are
// read-only for the duration of a run; results are merged via return values,
// so no locking is needed beyond the element store's own.
type Engine struct {
	cfg     model.AnalysisConfig
	store   *kb.ElementStore
	sats    []model.Satellite
	log     logging.Logger
	metrics *observability.EngineMetrics
}

// EngineOption customises engine construction.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger; by default logs are dropped.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetrics attaches engine metrics.
func WithMetrics(m *observability.EngineMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine validates cfg and constructs an engine for the given satellites
// and element store. Configuration errors abort construction.
func NewEngine(cfg model.AnalysisConfig, store *kb.ElementStore, sats []model.Satellite, opts ...EngineOption) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if store == nil {
		store = kb.NewElementStore()
	}
	e := &Engine{
		cfg:   cfg,
		store: store,
		sats:  sats,
		log:   logging.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// scanJob is one (satellite, ground point) contact-detection unit.
type scanJob struct {
	satID   string
	pointID string
	kind    model.ContactKind
	visible visibleFunc
	aqProb  float64
}

type scanResult struct {
	contacts []model.ContactOpportunity
	err      error
}

// Run computes the delivery probability for every target. Errors local to one
// satellite or target are isolated and reported through the result's
// diagnostics; only cancellation aborts the run.
func (e *Engine) Run(ctx context.Context, gateways []model.Gateway, targets []model.Target) (*model.AnalysisResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx, log := logging.WithRunLogger(logging.ContextWithRunID(ctx, runID), e.log)

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "engine.run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("satellites", len(e.sats)),
		attribute.Int("gateways", len(gateways)),
		attribute.Int("targets", len(targets)),
	)

	result := &model.AnalysisResult{
		RunID:         runID,
		Probabilities: make(map[string]float64, len(targets)),
	}

	windowStart, windowEnd := e.cfg.Window()
	log.Info(ctx, "starting coverage analysis",
		logging.String("window_start", windowStart.Format(time.RFC3339)),
		logging.String("window_end", windowEnd.Format(time.RFC3339)),
		logging.Int("satellites", len(e.sats)),
		logging.Int("targets", len(targets)),
	)

	props := e.buildPropagators(ctx, log, result)

	jobs, results, err := e.runScans(ctx, props, gateways, targets)
	if err != nil {
		return nil, err
	}

	downloadsBySat := make(map[string][]model.ContactOpportunity)
	imagesByTarget := make(map[string][]model.ContactOpportunity)
	failedSats := make(map[string]bool)

	for i, job := range jobs {
		res := results[i]
		if res.err != nil {
			// Per-satellite recovery: the satellite contributes no
			// opportunities for this scan, the run continues.
			if !failedSats[job.satID] {
				log.Warn(ctx, "propagation failed; dropping satellite contacts",
					logging.String("satellite", job.satID),
					logging.String("error", res.err.Error()),
				)
			}
			failedSats[job.satID] = true
			e.metrics.IncPropagationFailure()
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Kind:        model.DiagPropagationFailed,
				SatelliteID: job.satID,
				Target:      job.pointID,
				Detail:      res.err.Error(),
			})
			continue
		}
		e.metrics.AddContacts(job.kind.String(), len(res.contacts))
		switch job.kind {
		case model.ContactDownload:
			downloadsBySat[job.satID] = append(downloadsBySat[job.satID], res.contacts...)
		case model.ContactImage:
			imagesByTarget[job.pointID] = append(imagesByTarget[job.pointID], res.contacts...)
		}
	}

	// The full ordered gateway sequence per satellite must exist before any
	// image is assigned, so thinning happens after the merge across gateways.
	for satID, downloads := range downloadsBySat {
		sortContacts(downloads)
		downloadsBySat[satID] = ThinGatewayContacts(downloads, e.cfg.DownloadFreq)
	}

	for _, target := range targets {
		e.aggregateTarget(ctx, log, target, imagesByTarget[target.Name], downloadsBySat, result)
	}

	e.metrics.ObserveAnalysis(time.Since(started))
	log.Info(ctx, "coverage analysis complete",
		logging.Int("targets", len(result.Probabilities)),
		logging.Int("diagnostics", len(result.Diagnostics)),
	)
	return result, nil
}

// buildPropagators picks each satellite's authoritative element (epoch nearest
// to the value time) and records a diagnostic for satellites with no coverage
// data at all.
func (e *Engine) buildPropagators(ctx context.Context, log logging.Logger, result *model.AnalysisResult) map[string]*Propagator {
	valueTime := e.cfg.ValueTime()
	props := make(map[string]*Propagator, len(e.sats))
	for _, sat := range e.sats {
		el, ok := e.store.ClosestTo(sat.ID, valueTime)
		if !ok {
			log.Warn(ctx, "satellite has no orbital elements; skipping",
				logging.String("satellite", sat.ID))
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Kind:        model.DiagNoElements,
				SatelliteID: sat.ID,
				Detail:      "no orbital element available for analysis window",
			})
			continue
		}
		props[sat.ID] = NewPropagator(el, e.cfg.MaxPropagationAge)
	}
	return props
}

// runScans executes contact detection for every (satellite, ground point)
// pair on a bounded worker pool. Each job depends only on its own inputs, so
// results are written to disjoint slots and merged afterwards.
func (e *Engine) runScans(
	ctx context.Context,
	props map[string]*Propagator,
	gateways []model.Gateway,
	targets []model.Target,
) ([]scanJob, []scanResult, error) {
	aqProb := make(map[string]float64, len(e.sats))
	for _, sat := range e.sats {
		aqProb[sat.ID] = sat.AcquisitionProb
	}

	var jobs []scanJob
	for _, sat := range e.sats {
		if _, ok := props[sat.ID]; !ok {
			continue
		}
		for _, gw := range gateways {
			jobs = append(jobs, scanJob{
				satID:   sat.ID,
				pointID: gw.Name,
				kind:    model.ContactDownload,
				visible: GatewayVisibility(gw),
			})
		}
		for _, tg := range targets {
			jobs = append(jobs, scanJob{
				satID:   sat.ID,
				pointID: tg.Name,
				kind:    model.ContactImage,
				visible: TargetVisibility(tg),
				aqProb:  aqProb[sat.ID],
			})
		}
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	windowStart, windowEnd := e.cfg.Window()
	results := make([]scanResult, len(jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job scanJob) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = scanResult{err: ctx.Err()}
				return
			}

			contacts, err := DetectContacts(ctx, props[job.satID], job.kind,
				job.pointID, job.visible, windowStart, windowEnd, e.cfg.SampleStep)
			if err != nil {
				results[idx] = scanResult{err: err}
				return
			}
			for i := range contacts {
				contacts[i].AcquisitionProb = job.aqProb
			}
			results[idx] = scanResult{contacts: contacts}
		}(i, job)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return jobs, results, nil
}

// aggregateTarget turns one target's image opportunities into its delivery
// probability, recording diagnostics for missing weather and zero coverage.
func (e *Engine) aggregateTarget(
	ctx context.Context,
	log logging.Logger,
	target model.Target,
	images []model.ContactOpportunity,
	downloadsBySat map[string][]model.ContactOpportunity,
	result *model.AnalysisResult,
) {
	sortContacts(images)

	admissible, err := FilterImages(images, target, e.cfg.CloudThreshold, e.cfg.CloudSample)
	if err != nil {
		// The target's probability cannot be trusted without cloud data,
		// so it gets no entry at all rather than a silent default.
		log.Warn(ctx, "missing cloud data; dropping target",
			logging.String("target", target.Name),
			logging.String("error", err.Error()),
		)
		e.metrics.IncTargetSkipped("missing_weather")
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Kind:   model.DiagMissingWeather,
			Target: target.Name,
			Detail: err.Error(),
		})
		return
	}

	failures := make([]float64, 0, len(admissible))
	for _, img := range admissible {
		assignment := AssignDownloads(img, downloadsBySat[img.SatelliteID], e.cfg)
		failures = append(failures, FailureProbability(img, assignment, e.cfg.TFinal))
	}

	probability := DeliveryProbability(failures)
	if math.IsNaN(probability) || probability < 0 {
		probability = 0
	}

	if len(admissible) == 0 {
		// Zero admissible images is a valid zero-probability answer, not
		// an error; surface it so callers can tell the two apart.
		e.metrics.IncTargetSkipped("no_coverage")
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Kind:   model.DiagNoCoverage,
			Target: target.Name,
			Detail: "no admissible image opportunities in analysis window",
		})
	}

	result.Probabilities[target.Name] = probability
	result.Outcomes = append(result.Outcomes, model.DeliveryOutcome{
		Target:           target.Name,
		Probability:      probability,
		AdmissibleImages: len(admissible),
	})
}

func sortContacts(contacts []model.ContactOpportunity) {
	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].Start.Equal(contacts[j].Start) {
			return contacts[i].SatelliteID < contacts[j].SatelliteID
		}
		return contacts[i].Start.Before(contacts[j].Start)
	})
}
