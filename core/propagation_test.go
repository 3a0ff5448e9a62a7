package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

func issElement() model.OrbitalElement {
	return model.OrbitalElement{
		SatelliteID: "25544",
		Name:        "ISS (ZARYA)",
		NoradID:     25544,
		Epoch:       time.Date(2021, 10, 2, 14, 10, 0, 0, time.UTC),
		Line1:       "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
		Line2:       "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
	}
}

func TestPositionECEFNearEpoch(t *testing.T) {
	prop := NewPropagator(issElement(), 7*24*time.Hour)

	pos, err := prop.PositionECEF(issElement().Epoch.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("PositionECEF: %v", err)
	}

	// The ISS orbits roughly 400-430 km up; anything between 100 and
	// 1000 km of altitude means the propagation and frame conversion are
	// sane.
	alt := pos.Norm() - EarthRadiusKm
	if alt < 100 || alt > 1000 {
		t.Fatalf("ISS altitude = %v km, want within [100, 1000]", alt)
	}
}

func TestPositionECEFIsPure(t *testing.T) {
	prop := NewPropagator(issElement(), 7*24*time.Hour)
	at := issElement().Epoch.Add(47 * time.Minute)

	a, err := prop.PositionECEF(at)
	if err != nil {
		t.Fatalf("first PositionECEF: %v", err)
	}
	// Evaluate at other times in between, then repeat the original query.
	if _, err := prop.PositionECEF(at.Add(13 * time.Minute)); err != nil {
		t.Fatalf("intermediate PositionECEF: %v", err)
	}
	b, err := prop.PositionECEF(at)
	if err != nil {
		t.Fatalf("second PositionECEF: %v", err)
	}

	if math.Abs(a.X-b.X) > 0 || math.Abs(a.Y-b.Y) > 0 || math.Abs(a.Z-b.Z) > 0 {
		t.Fatalf("repeated evaluation differs: %+v vs %+v", a, b)
	}
}

func TestPositionECEFRejectsStaleEpoch(t *testing.T) {
	prop := NewPropagator(issElement(), 7*24*time.Hour)

	_, err := prop.PositionECEF(issElement().Epoch.Add(30 * 24 * time.Hour))
	if err == nil {
		t.Fatalf("expected PropagationError for request 30 days past epoch")
	}
	var perr *PropagationError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %T, want *PropagationError", err)
	}
	if perr.SatelliteID != "25544" {
		t.Errorf("PropagationError.SatelliteID = %q, want 25544", perr.SatelliteID)
	}

	// The age check is symmetric: far before the epoch is just as stale.
	if _, err := prop.PositionECEF(issElement().Epoch.Add(-30 * 24 * time.Hour)); err == nil {
		t.Fatalf("expected PropagationError for request 30 days before epoch")
	}
}

func TestPositionECEFZeroMaxAgeDisablesCheck(t *testing.T) {
	prop := NewPropagator(issElement(), 0)
	if _, err := prop.PositionECEF(issElement().Epoch.Add(30 * 24 * time.Hour)); err != nil {
		t.Fatalf("maxAge=0 should disable the staleness check, got %v", err)
	}
}
