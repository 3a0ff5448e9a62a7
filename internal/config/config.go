// Package config loads process and analysis configuration for the coverage
// engine, layering defaults, an optional YAML file, and COVERAGE_-prefixed
// environment variables.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// Config is the full process configuration as loaded from file/env. Duration
// and timestamp fields stay in plain units here so they round-trip through
// YAML and env vars; ToAnalysis converts them into a model.AnalysisConfig.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// MetricsAddr, when set, exposes /metrics on that address.
	MetricsAddr string `koanf:"metrics_addr"`

	// TFinal is the delivery deadline, RFC 3339. Empty means "now".
	TFinal string `koanf:"t_final"`
	// MaxAgeHours bounds how old captured imagery may be.
	MaxAgeHours float64 `koanf:"max_age_hours"`

	CloudThreshold float64 `koanf:"cloud_threshold"`
	CloudSample    string  `koanf:"cloud_sample"`

	TMinMinutes float64 `koanf:"t_min_minutes"`
	TMaxMinutes float64 `koanf:"t_max_minutes"`

	DownloadFreq           int `koanf:"download_freq"`
	MaxDownloadsConsidered int `koanf:"max_downloads_considered"`

	// DownloadProbability maps a candidate-pass count (as a string, since
	// YAML/env keys are strings) to per-rank usage probabilities.
	DownloadProbability map[string][]float64 `koanf:"download_probability"`

	SampleStepSeconds     float64 `koanf:"sample_step_seconds"`
	MaxPropagationAgeDays float64 `koanf:"max_propagation_age_days"`
	Workers               int     `koanf:"workers"`

	// Input files.
	TLEFile      string   `koanf:"tle_file"`
	GatewaysFile string   `koanf:"gateways_file"`
	CitiesFile   string   `koanf:"cities_file"`
	WeatherDir   string   `koanf:"weather_dir"`
	Cities       []string `koanf:"cities"`

	// AcquisitionProb applies to every satellite unless overridden per
	// satellite name.
	AcquisitionProb          float64            `koanf:"acquisition_prob"`
	AcquisitionProbOverrides map[string]float64 `koanf:"acquisition_prob_overrides"`

	// FieldOfRegardDeg is the imager's half-angle applied to every target.
	FieldOfRegardDeg float64 `koanf:"field_of_regard_deg"`
}

// New returns the built-in defaults. The download probability table and the
// pass-thinning factor mirror the planning values used for Planet's FLOCK.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",

		MaxAgeHours:    24,
		CloudThreshold: 1.0,
		CloudSample:    string(model.CloudSampleMidpoint),

		TMinMinutes: 60,
		TMaxMinutes: 360,

		DownloadFreq:           8,
		MaxDownloadsConsidered: 2,
		DownloadProbability: map[string][]float64{
			"1": {1.0},
			"2": {0.75, 0.25},
			"3": {0.6, 0.3, 0.1},
			"4": {0.5, 0.25, 0.1, 0.05},
		},

		SampleStepSeconds:     30,
		MaxPropagationAgeDays: 7,

		AcquisitionProb:  1.0,
		FieldOfRegardDeg: 30,
	}
}

// ToAnalysis converts the loaded configuration into the immutable analysis
// configuration the engine consumes. now is used when TFinal is unset.
func (c *Config) ToAnalysis(now time.Time) (model.AnalysisConfig, error) {
	tFinal := now
	if c.TFinal != "" {
		parsed, err := time.Parse(time.RFC3339, c.TFinal)
		if err != nil {
			return model.AnalysisConfig{}, fmt.Errorf("parse t_final: %w", err)
		}
		tFinal = parsed
	}

	table := make(map[int][]float64, len(c.DownloadProbability))
	keys := make([]string, 0, len(c.DownloadProbability))
	for k := range c.DownloadProbability {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			return model.AnalysisConfig{}, fmt.Errorf("download_probability key %q is not an integer", k)
		}
		table[n] = append([]float64(nil), c.DownloadProbability[k]...)
	}

	return model.AnalysisConfig{
		TFinal:                 tFinal.UTC(),
		MaxAge:                 time.Duration(c.MaxAgeHours * float64(time.Hour)),
		CloudThreshold:         c.CloudThreshold,
		CloudSample:            model.CloudSampleRule(c.CloudSample),
		TMin:                   time.Duration(c.TMinMinutes * float64(time.Minute)),
		TMax:                   time.Duration(c.TMaxMinutes * float64(time.Minute)),
		DownloadFreq:           c.DownloadFreq,
		MaxDownloadsConsidered: c.MaxDownloadsConsidered,
		DownloadProbability:    table,
		SampleStep:             time.Duration(c.SampleStepSeconds * float64(time.Second)),
		MaxPropagationAge:      time.Duration(c.MaxPropagationAgeDays * 24 * float64(time.Hour)),
		Workers:                c.Workers,
	}, nil
}

// AcquisitionProbFor returns the acquisition probability for one satellite,
// honouring per-name overrides.
func (c *Config) AcquisitionProbFor(name string) float64 {
	if p, ok := c.AcquisitionProbOverrides[name]; ok {
		return p
	}
	return c.AcquisitionProb
}
