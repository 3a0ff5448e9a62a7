package core

import (
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// FailureProbability returns the probability that processed insight from one
// admissible image is NOT available by tFinal:
//
//	P(fail) = 1 - acquisition_prob * sum(weight(event) * [event usable by tFinal])
//
// Processing latency is already folded into the TMin..TMax bounds enforced
// during assignment, so an assigned pass delivers in time exactly when the
// pass itself starts at or before tFinal. The assignment's residual mass
// always counts toward failure.
func FailureProbability(image model.ContactOpportunity, assignment DownloadAssignment, tFinal time.Time) float64 {
	success := 0.0
	for _, ev := range assignment.Events {
		if ev.Contact.Start.After(tFinal) {
			continue
		}
		success += ev.Weight
	}
	return 1 - image.AcquisitionProb*success
}

// DeliveryProbability combines per-image failure probabilities for one target
// into its delivery probability. Failures are treated as independent, so the
// total failure probability is their product; the empty product is 1, meaning
// a target with zero admissible images has delivery probability 0.
//
// Whether independence should be weakened for weather autocorrelation is an
// open modelling question; this is the single seam where a joint correction
// would go.
func DeliveryProbability(failures []float64) float64 {
	noImage := 1.0
	for _, f := range failures {
		noImage *= f
	}
	return 1 - noImage
}
