package main

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/signalsfoundry/coverage-engine/model"
)

// report is the JSON document the CLI emits on stdout.
type report struct {
	RunID   string             `json:"run_id"`
	Targets []targetReport     `json:"targets"`
	Skipped []diagnosticReport `json:"skipped,omitempty"`
}

type targetReport struct {
	Name             string  `json:"name"`
	Probability      float64 `json:"delivery_probability"`
	AdmissibleImages int     `json:"admissible_images"`
}

type diagnosticReport struct {
	Kind      string `json:"kind"`
	Satellite string `json:"satellite,omitempty"`
	Target    string `json:"target,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// buildReport flattens an analysis result into the output document, ordered
// by target name so repeated runs diff cleanly.
func buildReport(result *model.AnalysisResult) report {
	rep := report{RunID: result.RunID}

	for _, outcome := range result.Outcomes {
		rep.Targets = append(rep.Targets, targetReport{
			Name:             outcome.Target,
			Probability:      outcome.Probability,
			AdmissibleImages: outcome.AdmissibleImages,
		})
	}
	sort.Slice(rep.Targets, func(i, j int) bool {
		return rep.Targets[i].Name < rep.Targets[j].Name
	})

	for _, d := range result.Diagnostics {
		rep.Skipped = append(rep.Skipped, diagnosticReport{
			Kind:      d.Kind.String(),
			Satellite: d.SatelliteID,
			Target:    d.Target,
			Detail:    d.Detail,
		})
	}
	return rep
}

func writeReport(w io.Writer, result *model.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(result))
}
