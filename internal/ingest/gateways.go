package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/coverage-engine/model"
)

// internal JSON shapes - kept unexported so the file format can evolve
// independently of the model types.
type gatewaysJSON struct {
	Gateways []gatewayJSON `json:"gateways"`
}

type gatewayJSON struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	LatDeg           float64  `json:"lat_deg"`
	LonDeg           float64  `json:"lon_deg"`
	AltM             float64  `json:"alt_m"`
	ElevationMaskDeg *float64 `json:"elevation_mask_deg"` // optional; defaults to 10
}

// defaultElevationMaskDeg matches the usual planning assumption for ground
// stations without a published mask.
const defaultElevationMaskDeg = 10.0

// ReadGateways reads a JSON gateway list from r and returns the ground
// stations images can be downloaded to.
func ReadGateways(r io.Reader) ([]model.Gateway, error) {
	var payload gatewaysJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gateways: %w", err)
	}
	if len(payload.Gateways) == 0 {
		return nil, fmt.Errorf("gateway file lists no gateways")
	}

	gateways := make([]model.Gateway, 0, len(payload.Gateways))
	seen := make(map[string]bool, len(payload.Gateways))
	for i, g := range payload.Gateways {
		if g.Name == "" {
			return nil, fmt.Errorf("gateway %d has no name", i)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("duplicate gateway name %q", g.Name)
		}
		seen[g.Name] = true
		if g.LatDeg < -90 || g.LatDeg > 90 || g.LonDeg < -180 || g.LonDeg > 180 {
			return nil, fmt.Errorf("gateway %q has coordinates out of range", g.Name)
		}

		mask := defaultElevationMaskDeg
		if g.ElevationMaskDeg != nil {
			mask = *g.ElevationMaskDeg
		}
		id := g.ID
		if id == "" {
			id = g.Name
		}

		gateways = append(gateways, model.Gateway{
			GroundPoint: model.GroundPoint{
				ID:     id,
				Name:   g.Name,
				LatDeg: g.LatDeg,
				LonDeg: g.LonDeg,
				AltM:   g.AltM,
			},
			ElevationMaskDeg: mask,
		})
	}
	return gateways, nil
}
