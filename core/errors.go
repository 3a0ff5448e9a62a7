package core

import (
	"fmt"
	"time"
)

// ConfigurationError reports an analysis configuration that would make the
// whole run meaningless. It is raised before any computation starts and is
// fatal.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// PropagationError reports that an orbital element is unusable at a requested
// time. It is recovered per satellite: the affected satellite contributes no
// opportunities for the scan, the rest of the run proceeds.
type PropagationError struct {
	SatelliteID string
	At          time.Time
	Epoch       time.Time
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagation for %s at %s too far from element epoch %s",
		e.SatelliteID, e.At.Format(time.RFC3339), e.Epoch.Format(time.RFC3339))
}

// MissingWeatherDataError reports that a target lacks a cloud-fraction sample
// for a required hour. It is fatal for that target's computation; the cloud
// fraction is never silently defaulted.
type MissingWeatherDataError struct {
	Target string
	Hour   time.Time
}

func (e *MissingWeatherDataError) Error() string {
	return fmt.Sprintf("no cloud data for %s at hour %s",
		e.Target, e.Hour.Format(time.RFC3339))
}
