package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// ReadCloudSeries parses an hourly cloud-fraction CSV with rows of
// "timestamp,cloud_fraction" (RFC 3339 timestamps, fractions in [0,1]).
// A header row is tolerated. A fraction outside [0,1] is a hard error:
// silently clamping it would bias every probability downstream.
func ReadCloudSeries(r io.Reader) (model.CloudSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	series := make(model.CloudSeries)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cloud CSV line %d: %w", line, err)
		}
		if line == 1 && looksLikeHeader(record[0]) {
			continue
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("cloud CSV line %d: bad timestamp %q: %w", line, record[0], err)
		}
		fraction, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("cloud CSV line %d: bad fraction %q: %w", line, record[1], err)
		}
		if fraction < 0 || fraction > 1 {
			return nil, fmt.Errorf("cloud CSV line %d: fraction %v outside [0,1]", line, fraction)
		}

		series[ts.UTC().Truncate(time.Hour)] = fraction
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("cloud CSV contains no samples")
	}
	return series, nil
}

func looksLikeHeader(field string) bool {
	_, err := time.Parse(time.RFC3339, strings.TrimSpace(field))
	return err != nil
}
