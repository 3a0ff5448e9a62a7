package core

import (
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// FilterImages evaluates cloud admissibility for each image opportunity of one
// target. Opportunities whose cloud fraction exceeds threshold are dropped
// entirely; a fraction exactly equal to the threshold is admissible. The
// returned opportunities carry their cloud fraction and Admissible=true.
//
// The cloud fraction is evaluated exactly once per opportunity, here, and
// never recomputed downstream. A missing sample for a required hour yields
// MissingWeatherDataError; the fraction is never defaulted.
func FilterImages(
	images []model.ContactOpportunity,
	target model.Target,
	threshold float64,
	rule model.CloudSampleRule,
) ([]model.ContactOpportunity, error) {
	admissible := make([]model.ContactOpportunity, 0, len(images))
	for _, img := range images {
		fraction, err := cloudFractionFor(img, target, rule)
		if err != nil {
			return nil, err
		}
		if fraction > threshold {
			continue
		}
		img.CloudFraction = fraction
		img.Admissible = true
		admissible = append(admissible, img)
	}
	return admissible, nil
}

func cloudFractionFor(img model.ContactOpportunity, target model.Target, rule model.CloudSampleRule) (float64, error) {
	switch rule {
	case model.CloudSampleStart:
		return cloudAt(target, img.Start)
	case model.CloudSampleWorst:
		return worstCloudOver(target, img.Start, img.End)
	default:
		// Midpoint is the documented default representative time.
		return cloudAt(target, img.Midpoint())
	}
}

func cloudAt(target model.Target, t time.Time) (float64, error) {
	f, ok := target.Clouds.FractionAt(t)
	if !ok {
		return 0, &MissingWeatherDataError{
			Target: target.Name,
			Hour:   t.UTC().Truncate(time.Hour),
		}
	}
	return f, nil
}

func worstCloudOver(target model.Target, start, end time.Time) (float64, error) {
	worst := 0.0
	for h := start.UTC().Truncate(time.Hour); !h.After(end); h = h.Add(time.Hour) {
		f, err := cloudAt(target, h)
		if err != nil {
			return 0, err
		}
		if f > worst {
			worst = f
		}
	}
	return worst, nil
}
