package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// refineResolution is the edge precision contact boundaries are bisected to.
// Propagation is evaluated on whole seconds, so there is nothing to gain from
// refining further.
const refineResolution = time.Second

// visibleFunc reports whether the geometric contact condition holds for a
// satellite at the given ECEF position. Gateway visibility and target
// acquisition differ only in this predicate; the scan and refinement logic
// behind it is shared.
type visibleFunc func(sat Vec3) bool

// GatewayVisibility returns the contact predicate for a ground station: the
// satellite must be above the station's elevation mask.
func GatewayVisibility(gw model.Gateway) func(Vec3) bool {
	gwECEF := GeodeticToECEF(gw.LatDeg, gw.LonDeg, gw.AltM)
	return func(sat Vec3) bool {
		return ElevationDegrees(gwECEF, sat) >= gw.ElevationMaskDeg
	}
}

// TargetVisibility returns the acquisition predicate for an imaging target:
// the line from the satellite to the target must lie within the imager's
// field-of-regard half-angle, and the target must not be occluded by Earth.
func TargetVisibility(tg model.Target) func(Vec3) bool {
	tgECEF := GeodeticToECEF(tg.LatDeg, tg.LonDeg, tg.AltM)
	return func(sat Vec3) bool {
		if OffNadirDegrees(sat, tgECEF) > tg.FieldOfRegardDeg {
			return false
		}
		return hasLineOfSight(sat, tgECEF)
	}
}

// DetectContacts scans [windowStart, windowEnd] at fixed steps and returns the
// ordered contact opportunities during which visible holds. Runs of passing
// samples are merged into one interval and the interval edges are refined by
// bisection between the last failing and first passing sample. An opportunity
// still open at a window boundary is truncated to the window, not discarded.
func DetectContacts(
	ctx context.Context,
	prop *Propagator,
	kind model.ContactKind,
	groundPointID string,
	visible visibleFunc,
	windowStart, windowEnd time.Time,
	step time.Duration,
) ([]model.ContactOpportunity, error) {
	if step <= 0 {
		step = 30 * time.Second
	}

	sample := func(t time.Time) (bool, error) {
		pos, err := prop.PositionECEF(t)
		if err != nil {
			return false, err
		}
		return visible(pos), nil
	}

	intervals, err := scanIntervals(ctx, sample, windowStart, windowEnd, step)
	if err != nil {
		return nil, err
	}

	contacts := make([]model.ContactOpportunity, 0, len(intervals))
	for _, iv := range intervals {
		contacts = append(contacts, model.ContactOpportunity{
			Kind:          kind,
			SatelliteID:   prop.Element().SatelliteID,
			GroundPointID: groundPointID,
			Start:         iv.start,
			End:           iv.end,
		})
	}
	return contacts, nil
}

type interval struct {
	start, end time.Time
}

func scanIntervals(
	ctx context.Context,
	sample func(time.Time) (bool, error),
	windowStart, windowEnd time.Time,
	step time.Duration,
) ([]interval, error) {
	var (
		out      []interval
		open     bool
		openAt   time.Time
		prev     time.Time
		prevSeen bool
	)

	for t := windowStart; !t.After(windowEnd); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pass, err := sample(t)
		if err != nil {
			return nil, err
		}

		switch {
		case pass && !open:
			start := t
			if prevSeen {
				start = refineEdge(sample, prev, t)
			}
			openAt = start
			open = true
		case !pass && open:
			out = append(out, interval{start: openAt, end: refineEdge(sample, t, prev)})
			open = false
		}

		prev = t
		prevSeen = true
	}

	// Window-edge policy: truncate, don't drop.
	if open {
		out = append(out, interval{start: openAt, end: windowEnd})
	}
	return out, nil
}

// refineEdge bisects between a failing and a passing sample until the bracket
// shrinks below refineResolution, and returns the passing end of the bracket.
// Sampling errors abort refinement and fall back to the passing bound.
func refineEdge(sample func(time.Time) (bool, error), fail, pass time.Time) time.Time {
	for i := 0; i < 50; i++ {
		gap := pass.Sub(fail)
		if gap < 0 {
			gap = -gap
		}
		if gap <= refineResolution {
			break
		}
		mid := fail.Add(pass.Sub(fail) / 2)
		ok, err := sample(mid)
		if err != nil {
			return pass
		}
		if ok {
			pass = mid
		} else {
			fail = mid
		}
	}
	return pass
}

// ThinGatewayContacts models real scheduling constraints that make every
// geometric pass unusable: of the chronologically ordered gateway contacts for
// one satellite, only every freq-th is retained, always including the first.
func ThinGatewayContacts(contacts []model.ContactOpportunity, freq int) []model.ContactOpportunity {
	if freq <= 1 {
		return contacts
	}
	out := make([]model.ContactOpportunity, 0, (len(contacts)+freq-1)/freq)
	for i := 0; i < len(contacts); i += freq {
		out = append(out, contacts[i])
	}
	return out
}
