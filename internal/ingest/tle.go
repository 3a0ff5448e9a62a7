// Package ingest reads the engine's external inputs: already-downloaded TLE
// catalogs, ground-station definitions, city reference data, and per-city
// hourly cloud forecasts.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/coverage-engine/internal/logging"
	"github.com/signalsfoundry/coverage-engine/model"
)

// ParseTLE reads 3-line NORAD element sets (name line followed by the two
// element lines) and returns one OrbitalElement per set. Malformed sets are
// skipped with a warning rather than aborting the whole catalog; superseding
// elements for the same satellite simply appear as additional records.
func ParseTLE(ctx context.Context, r io.Reader, log logging.Logger) ([]model.OrbitalElement, error) {
	if log == nil {
		log = logging.Noop()
	}

	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var elements []model.OrbitalElement
	for i := 0; i+2 < len(lines); {
		name := strings.TrimSpace(lines[i])
		line1 := lines[i+1]
		line2 := lines[i+2]

		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			log.Warn(ctx, "skipping malformed TLE entry",
				logging.Int("line_index", i), logging.String("name", name))
			i++
			continue
		}
		if len(line1) < 32 {
			log.Warn(ctx, "skipping TLE entry with short line 1",
				logging.String("name", name))
			i += 3
			continue
		}

		// NORAD catalog number sits in line 1 columns 3-7.
		norad, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
		if err != nil {
			log.Warn(ctx, "skipping TLE entry with invalid catalog number",
				logging.String("name", name), logging.String("error", err.Error()))
			i += 3
			continue
		}

		// Epoch sits in line 1 columns 19-32 as YYDDD.DDDDDDDD.
		epoch, err := parseTLEEpoch(strings.TrimSpace(line1[18:32]))
		if err != nil {
			log.Warn(ctx, "skipping TLE entry with invalid epoch",
				logging.String("name", name), logging.String("error", err.Error()))
			i += 3
			continue
		}

		elements = append(elements, model.OrbitalElement{
			SatelliteID: strconv.Itoa(norad),
			Name:        name,
			NoradID:     norad,
			Epoch:       epoch,
			Line1:       line1,
			Line2:       line2,
		})
		i += 3
	}

	return elements, nil
}

// parseTLEEpoch converts a TLE epoch in YYDDD.DDDDDDDD form to time.Time.
// Years 00-56 map to the 2000s, 57-99 to the 1900s.
func parseTLEEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// Day of year is 1-based: day 1.0 is midnight on January 1st.
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
