package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CityLocation is a reference lat/lon for one named city.
type CityLocation struct {
	Name   string
	LatDeg float64
	LonDeg float64
}

// ReadCities parses a "name,latitude,longitude" reference CSV into a lookup
// keyed by city name. A header row is tolerated.
func ReadCities(r io.Reader) (map[string]CityLocation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	cities := make(map[string]CityLocation)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cities CSV line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[0])
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("cities CSV line %d: bad coordinates for %q", line, name)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("cities CSV line %d: coordinates out of range for %q", line, name)
		}

		cities[name] = CityLocation{Name: name, LatDeg: lat, LonDeg: lon}
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("cities CSV contains no entries")
	}
	return cities, nil
}
