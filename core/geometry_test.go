package core

import (
	"math"
	"testing"
)

func TestHasLineOfSight_NoObstruction(t *testing.T) {
	// Two points high and on the same side of Earth, separated in Y.
	// The segment between them stays at x ≈ 8000 km, well outside Earth.
	posA := Vec3{X: 8000, Y: 0, Z: 0}
	posB := Vec3{X: 8000, Y: 1000, Z: 0}

	if !hasLineOfSight(posA, posB) {
		t.Errorf("expected LoS between two high points on same side of Earth")
	}
}

func TestHasLineOfSight_Obstructed(t *testing.T) {
	// Two points on opposite sides: the chord passes through the Earth.
	posA := Vec3{X: 7000, Y: 0, Z: 0}
	posB := Vec3{X: -7000, Y: 0, Z: 0}

	if hasLineOfSight(posA, posB) {
		t.Errorf("expected LoS to be blocked by Earth")
	}
}

func TestElevationDegrees(t *testing.T) {
	observer := Vec3{X: EarthRadiusKm, Y: 0, Z: 0}

	overhead := Vec3{X: EarthRadiusKm + 500, Y: 0, Z: 0}
	if el := ElevationDegrees(observer, overhead); math.Abs(el-90) > 1e-9 {
		t.Errorf("overhead elevation = %v, want 90", el)
	}

	// A point straight along the horizon plane sits at elevation ~0.
	horizon := Vec3{X: EarthRadiusKm, Y: 1000, Z: 0}
	if el := ElevationDegrees(observer, horizon); math.Abs(el) > 1e-6 {
		t.Errorf("horizon elevation = %v, want 0", el)
	}
}

func TestOffNadirDegrees(t *testing.T) {
	sat := Vec3{X: EarthRadiusKm + 500, Y: 0, Z: 0}

	// Point directly below the satellite.
	below := Vec3{X: EarthRadiusKm, Y: 0, Z: 0}
	if off := OffNadirDegrees(sat, below); math.Abs(off) > 1e-9 {
		t.Errorf("off-nadir to sub-satellite point = %v, want 0", off)
	}

	// A point offset sideways has a strictly positive off-nadir angle that
	// grows with the offset.
	near := Vec3{X: EarthRadiusKm, Y: 50, Z: 0}
	far := Vec3{X: EarthRadiusKm, Y: 500, Z: 0}
	offNear := OffNadirDegrees(sat, near)
	offFar := OffNadirDegrees(sat, far)
	if offNear <= 0 || offFar <= offNear {
		t.Errorf("off-nadir angles not increasing: near=%v far=%v", offNear, offFar)
	}
}

func TestGeodeticToECEF(t *testing.T) {
	// Equator, prime meridian, sea level: on the X axis at the equatorial
	// radius.
	p := GeodeticToECEF(0, 0, 0)
	if math.Abs(p.X-wgs84AKm) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z) > 1e-6 {
		t.Errorf("equator/prime meridian = %+v, want {%v 0 0}", p, wgs84AKm)
	}

	// North pole: on the Z axis at the polar radius (~6356.75 km).
	pole := GeodeticToECEF(90, 0, 0)
	if math.Abs(pole.X) > 1e-6 || math.Abs(pole.Z-6356.7523142) > 1e-3 {
		t.Errorf("north pole = %+v, want {0 0 ~6356.752}", pole)
	}

	// Altitude pushes the point radially outwards.
	high := GeodeticToECEF(0, 0, 1000)
	if math.Abs(high.X-p.X-1.0) > 1e-9 {
		t.Errorf("1000 m altitude moved X by %v km, want 1", high.X-p.X)
	}
}
