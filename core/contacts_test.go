package core

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// windowSample builds a sampler that passes inside any of the given intervals.
func windowSample(passing []interval) func(time.Time) (bool, error) {
	return func(t time.Time) (bool, error) {
		for _, iv := range passing {
			if !t.Before(iv.start) && !t.After(iv.end) {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestScanIntervalsMergesConsecutiveSamples(t *testing.T) {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	pass := []interval{
		{start: base.Add(10 * time.Minute), end: base.Add(18 * time.Minute)},
		{start: base.Add(40 * time.Minute), end: base.Add(45 * time.Minute)},
	}

	got, err := scanIntervals(context.Background(), windowSample(pass), base, base.Add(time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("scanIntervals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d intervals, want 2: %v", len(got), got)
	}
	for i, iv := range got {
		if !iv.start.Before(iv.end) {
			t.Errorf("interval %d has start %v >= end %v", i, iv.start, iv.end)
		}
	}
}

func TestScanIntervalsRefinesEdgesBelowStep(t *testing.T) {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	// True contact runs from 10m20s to 17m40s; the 1-minute scan grid
	// cannot see those edges without refinement.
	trueStart := base.Add(10*time.Minute + 20*time.Second)
	trueEnd := base.Add(17*time.Minute + 40*time.Second)
	pass := []interval{{start: trueStart, end: trueEnd}}

	got, err := scanIntervals(context.Background(), windowSample(pass), base, base.Add(time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("scanIntervals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d intervals, want 1", len(got))
	}

	if d := got[0].start.Sub(trueStart); d < -2*refineResolution || d > 2*refineResolution {
		t.Errorf("refined start %v is %v from true start %v", got[0].start, d, trueStart)
	}
	if d := got[0].end.Sub(trueEnd); d < -2*refineResolution || d > 2*refineResolution {
		t.Errorf("refined end %v is %v from true end %v", got[0].end, d, trueEnd)
	}
}

func TestScanIntervalsTruncatesAtWindowEdges(t *testing.T) {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := base.Add(time.Hour)
	// Contact open across both window boundaries.
	pass := []interval{{start: base.Add(-time.Hour), end: windowEnd.Add(time.Hour)}}

	got, err := scanIntervals(context.Background(), windowSample(pass), base, windowEnd, time.Minute)
	if err != nil {
		t.Fatalf("scanIntervals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d intervals, want 1", len(got))
	}
	if !got[0].start.Equal(base) || !got[0].end.Equal(windowEnd) {
		t.Errorf("interval = [%v, %v], want truncated to [%v, %v]",
			got[0].start, got[0].end, base, windowEnd)
	}
}

func TestScanIntervalsEmptyWhenNeverVisible(t *testing.T) {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	got, err := scanIntervals(context.Background(), windowSample(nil), base, base.Add(time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("scanIntervals: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d intervals, want 0", len(got))
	}
}

func TestScanIntervalsHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := scanIntervals(ctx, windowSample(nil), base, base.Add(time.Hour), time.Minute); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestThinGatewayContacts(t *testing.T) {
	mk := func(n int) []model.ContactOpportunity {
		base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
		out := make([]model.ContactOpportunity, n)
		for i := range out {
			out[i] = model.ContactOpportunity{
				Kind:  model.ContactDownload,
				Start: base.Add(time.Duration(i) * time.Hour),
				End:   base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			}
		}
		return out
	}

	cases := []struct {
		m, k, want int
	}{
		{m: 17, k: 8, want: 3}, // ⌈17/8⌉
		{m: 16, k: 8, want: 2},
		{m: 1, k: 8, want: 1},
		{m: 0, k: 8, want: 0},
		{m: 5, k: 1, want: 5},
	}
	for _, tc := range cases {
		raw := mk(tc.m)
		thinned := ThinGatewayContacts(raw, tc.k)
		if len(thinned) != tc.want {
			t.Errorf("thin(M=%d, K=%d) kept %d, want %d", tc.m, tc.k, len(thinned), tc.want)
			continue
		}
		if tc.m > 0 && !thinned[0].Start.Equal(raw[0].Start) {
			t.Errorf("thin(M=%d, K=%d) dropped the first opportunity", tc.m, tc.k)
		}
	}
}

func TestGatewayVisibilityUsesMask(t *testing.T) {
	gw := model.Gateway{
		GroundPoint:      model.GroundPoint{Name: "gs", LatDeg: 0, LonDeg: 0},
		ElevationMaskDeg: 10,
	}
	visible := GatewayVisibility(gw)

	// Directly overhead at 500 km: elevation 90, well above any mask.
	overhead := GeodeticToECEF(0, 0, 500_000)
	if !visible(overhead) {
		t.Errorf("satellite directly overhead should be visible")
	}

	// On the opposite side of Earth: far below the horizon.
	antipode := GeodeticToECEF(0, 180, 500_000)
	if visible(antipode) {
		t.Errorf("satellite on far side of Earth should not be visible")
	}
}

func TestTargetVisibilityUsesFieldOfRegard(t *testing.T) {
	tg := model.Target{
		GroundPoint:      model.GroundPoint{Name: "city", LatDeg: 0, LonDeg: 0},
		FieldOfRegardDeg: 5,
	}
	visible := TargetVisibility(tg)

	// Directly overhead: off-nadir 0.
	if !visible(GeodeticToECEF(0, 0, 500_000)) {
		t.Errorf("target directly below satellite should be acquirable")
	}

	// A satellite 20 degrees of longitude away sees the target far off
	// nadir.
	if visible(GeodeticToECEF(0, 20, 500_000)) {
		t.Errorf("target 20° of longitude away should be outside a 5° field of regard")
	}

	// The antipodal satellite points its nadir axis through Earth toward
	// the target; the angle test alone would pass, occlusion must fail it.
	if visible(GeodeticToECEF(0, 180, 500_000)) {
		t.Errorf("target behind the Earth should not be acquirable")
	}
}
