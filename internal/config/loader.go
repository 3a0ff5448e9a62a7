package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML), from path or $COVERAGE_CONFIG
//  3. env (prefix COVERAGE_)
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("COVERAGE_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: COVERAGE_CLOUD_THRESHOLD, COVERAGE_TLE_FILE, ...
	// Keys keep their underscores to match the koanf tags on Config.
	envProvider := env.Provider("COVERAGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "coverage_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.MaxAgeHours <= 0 {
		return nil, errors.New("max_age_hours must be positive")
	}
	if cfg.DownloadFreq < 1 {
		return nil, errors.New("download_freq must be at least 1")
	}
	return &cfg, nil
}
