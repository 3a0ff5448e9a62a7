package core

import (
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

func cloudTarget(samples map[int]float64) model.Target {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	clouds := make(model.CloudSeries, len(samples))
	for hour, f := range samples {
		clouds[base.Add(time.Duration(hour)*time.Hour)] = f
	}
	return model.Target{
		GroundPoint: model.GroundPoint{Name: "Denver"},
		Clouds:      clouds,
	}
}

func imageAt(hour int, minutes int) model.ContactOpportunity {
	base := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	start := base.Add(time.Duration(hour)*time.Hour + time.Duration(minutes)*time.Minute)
	return model.ContactOpportunity{
		Kind:        model.ContactImage,
		SatelliteID: "sat1",
		Start:       start,
		End:         start.Add(4 * time.Minute),
	}
}

func TestFilterImagesThresholdBoundaryInclusive(t *testing.T) {
	target := cloudTarget(map[int]float64{2: 0.5, 3: 0.51})
	images := []model.ContactOpportunity{imageAt(2, 10), imageAt(3, 10)}

	admissible, err := FilterImages(images, target, 0.5, model.CloudSampleMidpoint)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	// Exactly at threshold is admissible; one notch above is not, and the
	// inadmissible image vanishes instead of surviving with zero weight.
	if len(admissible) != 1 {
		t.Fatalf("got %d admissible images, want 1", len(admissible))
	}
	if admissible[0].CloudFraction != 0.5 || !admissible[0].Admissible {
		t.Errorf("admissible image = %+v, want fraction 0.5 and Admissible=true", admissible[0])
	}
}

func TestFilterImagesMidpointHour(t *testing.T) {
	// Image spans 01:58-02:02; its midpoint 02:00 lands in hour 2.
	img := model.ContactOpportunity{
		Kind:  model.ContactImage,
		Start: time.Date(2022, 6, 10, 1, 58, 0, 0, time.UTC),
		End:   time.Date(2022, 6, 10, 2, 2, 0, 0, time.UTC),
	}
	target := cloudTarget(map[int]float64{1: 1.0, 2: 0.0})

	admissible, err := FilterImages([]model.ContactOpportunity{img}, target, 0.5, model.CloudSampleMidpoint)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	if len(admissible) != 1 || admissible[0].CloudFraction != 0.0 {
		t.Fatalf("midpoint rule should read hour 2 (fraction 0), got %v", admissible)
	}

	// The start rule reads hour 1 instead and rejects the image.
	admissible, err = FilterImages([]model.ContactOpportunity{img}, target, 0.5, model.CloudSampleStart)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	if len(admissible) != 0 {
		t.Fatalf("start rule should read hour 1 (fraction 1.0) and reject, got %v", admissible)
	}
}

func TestFilterImagesWorstRule(t *testing.T) {
	img := model.ContactOpportunity{
		Kind:  model.ContactImage,
		Start: time.Date(2022, 6, 10, 1, 58, 0, 0, time.UTC),
		End:   time.Date(2022, 6, 10, 2, 2, 0, 0, time.UTC),
	}
	target := cloudTarget(map[int]float64{1: 0.9, 2: 0.1})

	admissible, err := FilterImages([]model.ContactOpportunity{img}, target, 0.5, model.CloudSampleWorst)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	if len(admissible) != 0 {
		t.Fatalf("worst rule should take fraction 0.9 and reject, got %v", admissible)
	}
}

func TestFilterImagesMissingWeatherData(t *testing.T) {
	target := cloudTarget(map[int]float64{2: 0.1})
	images := []model.ContactOpportunity{imageAt(5, 0)}

	_, err := FilterImages(images, target, 1.0, model.CloudSampleMidpoint)
	if err == nil {
		t.Fatalf("expected MissingWeatherDataError for uncovered hour")
	}
	var merr *MissingWeatherDataError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %T, want *MissingWeatherDataError", err)
	}
	if merr.Target != "Denver" {
		t.Errorf("MissingWeatherDataError.Target = %q, want Denver", merr.Target)
	}
	wantHour := time.Date(2022, 6, 10, 5, 0, 0, 0, time.UTC)
	if !merr.Hour.Equal(wantHour) {
		t.Errorf("MissingWeatherDataError.Hour = %v, want %v", merr.Hour, wantHour)
	}
}

func TestFilterImagesEvaluatesOncePerOpportunity(t *testing.T) {
	target := cloudTarget(map[int]float64{2: 0.3})
	images := []model.ContactOpportunity{imageAt(2, 10)}

	first, err := FilterImages(images, target, 1.0, model.CloudSampleMidpoint)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	second, err := FilterImages(images, target, 1.0, model.CloudSampleMidpoint)
	if err != nil {
		t.Fatalf("FilterImages: %v", err)
	}
	if first[0].CloudFraction != second[0].CloudFraction {
		t.Fatalf("repeated filtering disagreed: %v vs %v", first[0].CloudFraction, second[0].CloudFraction)
	}
	// The input slice is left untouched; admissibility lives on the copies.
	if images[0].Admissible {
		t.Errorf("FilterImages mutated its input")
	}
}
