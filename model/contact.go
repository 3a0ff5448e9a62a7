package model

import "time"

// ContactKind distinguishes what a contact opportunity can be used for.
type ContactKind int

const (
	// ContactDownload is a pass over a gateway during which an image could
	// be retrieved.
	ContactDownload ContactKind = iota
	// ContactImage is a pass over a target during which an image could be
	// captured.
	ContactImage
)

func (k ContactKind) String() string {
	switch k {
	case ContactDownload:
		return "download"
	case ContactImage:
		return "image"
	default:
		return "unknown"
	}
}

// ContactOpportunity is a time interval during which a satellite and a ground
// point satisfy the applicable visibility condition. Opportunities are derived
// per analysis run and never persisted.
type ContactOpportunity struct {
	Kind          ContactKind
	SatelliteID   string
	GroundPointID string

	Start time.Time
	End   time.Time

	// Image-kind opportunities only.
	AcquisitionProb float64
	CloudFraction   float64
	Admissible      bool
}

// Midpoint returns the representative time halfway through the opportunity.
func (c ContactOpportunity) Midpoint() time.Time {
	return c.Start.Add(c.End.Sub(c.Start) / 2)
}

// Duration returns the length of the opportunity.
func (c ContactOpportunity) Duration() time.Duration {
	return c.End.Sub(c.Start)
}
