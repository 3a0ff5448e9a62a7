package core

import (
	"github.com/signalsfoundry/coverage-engine/model"
)

// WeightedDownload is one candidate gateway pass for retrieving an image,
// together with the probability that it is the pass actually used.
type WeightedDownload struct {
	Contact model.ContactOpportunity
	Weight  float64
}

// DownloadAssignment maps an image's candidate download passes to usage
// probabilities. Residual is the explicitly tracked probability that the image
// is never downloaded within the guaranteed window; Residual plus the sum of
// the weights is always 1.
type DownloadAssignment struct {
	Events   []WeightedDownload
	Residual float64
}

// AssignDownloads enumerates the gateway passes usable for retrieving one
// admissible image and assigns each a usage probability from the configured
// probability-by-rank table.
//
// A pass is usable when it belongs to the same satellite and starts strictly
// inside (capture_end + TMin, capture_end + TMax). At most
// MaxDownloadsConsidered passes are considered, in chronological order. The
// downloads slice must already be thinned and ordered by start time.
func AssignDownloads(
	image model.ContactOpportunity,
	downloads []model.ContactOpportunity,
	cfg model.AnalysisConfig,
) DownloadAssignment {
	tCap := image.End
	earliest := tCap.Add(cfg.TMin)
	latest := tCap.Add(cfg.TMax)

	var candidates []model.ContactOpportunity
	for _, d := range downloads {
		if d.SatelliteID != image.SatelliteID {
			continue
		}
		if !d.Start.After(earliest) || !d.Start.Before(latest) {
			continue
		}
		candidates = append(candidates, d)
		if len(candidates) == cfg.MaxDownloadsConsidered {
			break
		}
	}

	weights := weightsForCount(cfg.DownloadProbability, len(candidates))

	assignment := DownloadAssignment{Residual: 1}
	for i, d := range candidates {
		w := 0.0
		if i < len(weights) {
			w = weights[i]
		}
		assignment.Events = append(assignment.Events, WeightedDownload{Contact: d, Weight: w})
		assignment.Residual -= w
	}
	if assignment.Residual < 0 {
		// Validation caps each row's sum at 1; anything below zero here is
		// float drift.
		assignment.Residual = 0
	}
	return assignment
}

// weightsForCount picks the probability-by-rank row for n candidate passes:
// the row keyed by the largest configured key <= n. Ranks beyond the row's
// length carry zero weight.
func weightsForCount(table map[int][]float64, n int) []float64 {
	if n == 0 {
		return nil
	}
	best := 0
	for k := range table {
		if k <= n && k > best {
			best = k
		}
	}
	if best == 0 {
		return nil
	}
	return table[best]
}
