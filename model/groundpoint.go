package model

import "time"

// GroundPoint is a fixed geodetic location taking part in contact analysis.
type GroundPoint struct {
	ID     string
	Name   string
	LatDeg float64
	LonDeg float64
	AltM   float64
}

// Gateway is a ground station that satellites download images to. A pass only
// counts as a contact while the satellite is above the elevation mask.
type Gateway struct {
	GroundPoint
	ElevationMaskDeg float64
}

// Target is an imaging target (typically a city). A satellite can acquire the
// target while the line to it lies within the imager's field-of-regard
// half-angle, measured from nadir.
type Target struct {
	GroundPoint
	FieldOfRegardDeg float64
	Clouds           CloudSeries
}

// CloudSeries is an hourly cloud-fraction forecast keyed by the start of each
// hour (UTC). Fractions are in [0,1].
type CloudSeries map[time.Time]float64

// FractionAt returns the cloud fraction for the hour containing t.
// The second return value reports whether a sample exists for that hour.
func (s CloudSeries) FractionAt(t time.Time) (float64, bool) {
	f, ok := s[t.UTC().Truncate(time.Hour)]
	return f, ok
}
