// Command coverage computes, for a set of cities, the probability that a
// usable image is captured and delivered through a gateway before a deadline.
// Results are written to stdout as JSON; logs and metrics use stderr and an
// optional /metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/signalsfoundry/coverage-engine/core"
	"github.com/signalsfoundry/coverage-engine/internal/config"
	"github.com/signalsfoundry/coverage-engine/internal/ingest"
	"github.com/signalsfoundry/coverage-engine/internal/logging"
	"github.com/signalsfoundry/coverage-engine/internal/observability"
	"github.com/signalsfoundry/coverage-engine/kb"
	"github.com/signalsfoundry/coverage-engine/model"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file (also $COVERAGE_CONFIG)")
	tFinal := flag.String("t-final", "", "Delivery deadline, RFC 3339; overrides the configured value")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; overrides the configured value")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	if *tFinal != "" {
		cfg.TFinal = *tFinal
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metrics, err := observability.NewEngineMetrics(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, metrics, log)

	analysisCfg, err := cfg.ToAnalysis(time.Now().UTC())
	if err != nil {
		log.Error(ctx, "invalid analysis configuration", logging.String("error", err.Error()))
		os.Exit(1)
	}

	store, sats := loadElements(ctx, log, cfg)
	gateways := loadGateways(ctx, log, cfg.GatewaysFile)
	targets := loadTargets(ctx, log, cfg)

	engine, err := core.NewEngine(analysisCfg, store, sats,
		core.WithLogger(log),
		core.WithMetrics(metrics),
	)
	if err != nil {
		log.Error(ctx, "invalid analysis configuration", logging.String("error", err.Error()))
		os.Exit(1)
	}

	result, err := engine.Run(ctx, gateways, targets)
	if err != nil {
		log.Error(ctx, "analysis aborted", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if err := writeReport(os.Stdout, result); err != nil {
		log.Error(ctx, "failed to write report", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// loadElements parses the TLE file into an element store and derives the
// satellite list, applying per-satellite acquisition probability overrides.
func loadElements(ctx context.Context, log logging.Logger, cfg *config.Config) (*kb.ElementStore, []model.Satellite) {
	store := kb.NewElementStore()

	if cfg.TLEFile == "" {
		log.Warn(ctx, "no TLE file configured; analysis will have no satellites")
		return store, nil
	}
	f, err := os.Open(cfg.TLEFile)
	if err != nil {
		log.Error(ctx, "failed to open TLE file",
			logging.String("path", cfg.TLEFile),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	elements, err := ingest.ParseTLE(ctx, f, log)
	if err != nil {
		log.Error(ctx, "failed to parse TLE file",
			logging.String("path", cfg.TLEFile),
			logging.String("error", err.Error()))
		os.Exit(1)
	}

	names := make(map[string]string)
	for _, el := range elements {
		if err := store.AddElement(el); err != nil {
			log.Warn(ctx, "skipping orbital element",
				logging.String("satellite", el.SatelliteID),
				logging.String("error", err.Error()))
			continue
		}
		names[el.SatelliteID] = el.Name
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sats := make([]model.Satellite, 0, len(ids))
	for _, id := range ids {
		sats = append(sats, model.Satellite{
			ID:              id,
			Name:            names[id],
			AcquisitionProb: cfg.AcquisitionProbFor(names[id]),
		})
	}

	log.Info(ctx, "loaded orbital elements",
		logging.String("path", cfg.TLEFile),
		logging.Int("satellites", len(sats)),
		logging.Int("elements", store.Len()),
	)
	return store, sats
}

func loadGateways(ctx context.Context, log logging.Logger, path string) []model.Gateway {
	if path == "" {
		log.Warn(ctx, "no gateway file configured; no downloads will be possible")
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open gateway file",
			logging.String("path", path),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	gateways, err := ingest.ReadGateways(f)
	if err != nil {
		log.Error(ctx, "failed to parse gateway file",
			logging.String("path", path),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded gateways", logging.String("path", path), logging.Int("count", len(gateways)))
	return gateways
}

// loadTargets resolves the configured city names against the reference CSV and
// attaches each city's hourly cloud forecast. A city with no forecast file is
// kept; the engine reports it as missing weather if it matters.
func loadTargets(ctx context.Context, log logging.Logger, cfg *config.Config) []model.Target {
	if cfg.CitiesFile == "" {
		log.Warn(ctx, "no cities file configured; analysis will have no targets")
		return nil
	}
	f, err := os.Open(cfg.CitiesFile)
	if err != nil {
		log.Error(ctx, "failed to open cities file",
			logging.String("path", cfg.CitiesFile),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	cities, err := ingest.ReadCities(f)
	if err != nil {
		log.Error(ctx, "failed to parse cities file",
			logging.String("path", cfg.CitiesFile),
			logging.String("error", err.Error()))
		os.Exit(1)
	}

	names := cfg.Cities
	if len(names) == 0 {
		for name := range cities {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	targets := make([]model.Target, 0, len(names))
	for i, name := range names {
		city, ok := cities[name]
		if !ok {
			log.Warn(ctx, "city not in reference file; skipping", logging.String("city", name))
			continue
		}
		targets = append(targets, model.Target{
			GroundPoint: model.GroundPoint{
				ID:     fmt.Sprintf("city-%d", i),
				Name:   city.Name,
				LatDeg: city.LatDeg,
				LonDeg: city.LonDeg,
			},
			FieldOfRegardDeg: cfg.FieldOfRegardDeg,
			Clouds:           loadCloudSeries(ctx, log, cfg.WeatherDir, city.Name),
		})
	}
	log.Info(ctx, "loaded targets", logging.Int("count", len(targets)))
	return targets
}

// loadCloudSeries reads <weatherDir>/<city>.csv, with the city name lowercased
// and spaces replaced by underscores.
func loadCloudSeries(ctx context.Context, log logging.Logger, weatherDir, city string) model.CloudSeries {
	if weatherDir == "" {
		return nil
	}
	slug := strings.ReplaceAll(strings.ToLower(city), " ", "_")
	path := filepath.Join(weatherDir, slug+".csv")

	f, err := os.Open(path)
	if err != nil {
		log.Warn(ctx, "no cloud forecast for city",
			logging.String("city", city),
			logging.String("path", path))
		return nil
	}
	defer f.Close()

	series, err := ingest.ReadCloudSeries(f)
	if err != nil {
		log.Warn(ctx, "failed to parse cloud forecast",
			logging.String("path", path),
			logging.String("error", err.Error()))
		return nil
	}
	return series
}

func serveMetrics(addr string, metrics *observability.EngineMetrics, log logging.Logger) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
