package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidSTTProviderNames lists known speech-to-text provider names.
// Used by [Validate] to warn about unrecognised names.
var ValidSTTProviderNames = []string{"whisper", "deepgram", "openai"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.STT.Name != "" && !slices.Contains(ValidSTTProviderNames, cfg.STT.Name) {
		slog.Warn("unknown STT provider name — may be a typo or third-party provider",
			"name", cfg.STT.Name,
			"known", ValidSTTProviderNames,
		)
	}
	if cfg.STT.Name == "" {
		slog.Warn("stt.name is empty; transcription endpoints will be disabled")
	}

	if cfg.Database.PostgresDSN == "" {
		slog.Warn("database.postgres_dsn is empty; commands will be stored in memory only")
	}

	if cfg.Correction.MinSimilarity != 0 {
		if cfg.Correction.MinSimilarity < 0 || cfg.Correction.MinSimilarity > 1 {
			errs = append(errs, fmt.Errorf("correction.min_similarity %.2f is out of range [0, 1]", cfg.Correction.MinSimilarity))
		}
	}
	if cfg.Correction.MaxNGram < 0 {
		errs = append(errs, fmt.Errorf("correction.max_ngram %d must not be negative", cfg.Correction.MaxNGram))
	}

	return errors.Join(errs...)
}
