package model

import "time"

// OrbitalElement is an immutable snapshot of a satellite's orbital state at a
// reference epoch, carried in two-line element form so it can be fed straight
// into an SGP4 propagator. Newer elements for the same satellite supersede
// older ones by being appended alongside them, never by mutation.
type OrbitalElement struct {
	SatelliteID string
	Name        string
	NoradID     int

	Epoch time.Time
	Line1 string
	Line2 string
}

// Satellite describes one imaging platform taking part in an analysis.
// AcquisitionProb is the probability that an imaging opportunity inside the
// field of regard actually results in a capture.
type Satellite struct {
	ID              string
	Name            string
	AcquisitionProb float64
}
