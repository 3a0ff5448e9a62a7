package core

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/coverage-engine/model"
)

// Propagator produces a satellite's ECEF position at arbitrary times from one
// orbital element. It is a pure function of (element, t): repeated calls keep
// no per-call state and may run concurrently.
type Propagator struct {
	element model.OrbitalElement
	sat     satellite.Satellite
	maxAge  time.Duration
}

// NewPropagator constructs a propagator from an orbital element. Requests
// farther than maxAge from the element's epoch are rejected with
// PropagationError; a maxAge of zero disables the check.
func NewPropagator(el model.OrbitalElement, maxAge time.Duration) *Propagator {
	sat := satellite.TLEToSat(el.Line1, el.Line2, satellite.GravityWGS72)
	return &Propagator{element: el, sat: sat, maxAge: maxAge}
}

// Element returns the orbital element backing this propagator.
func (p *Propagator) Element() model.OrbitalElement {
	return p.element
}

// PositionECEF propagates the satellite to t and returns its Earth-fixed
// position in kilometres.
func (p *Propagator) PositionECEF(t time.Time) (Vec3, error) {
	if p.maxAge > 0 {
		age := t.Sub(p.element.Epoch)
		if age < 0 {
			age = -age
		}
		if age > p.maxAge {
			return Vec3{}, &PropagationError{
				SatelliteID: p.element.SatelliteID,
				At:          t,
				Epoch:       p.element.Epoch,
			}
		}
	}

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	return Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}, nil
}
