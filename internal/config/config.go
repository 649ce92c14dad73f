// Package config binds the cmd/hl7fhir CLI's environment variables, the way
// Nirmitee-tech-headless-ehr-fhir's internal/config package binds its
// server's (§10.2).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is every environment-driven option the CLI exposes.
type Config struct {
	CataloguePath      string `mapstructure:"CATALOGUE_PATH"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	GenerateTestINS    bool   `mapstructure:"GENERATE_TEST_INS"`
	Strict             bool   `mapstructure:"STRICT"`
	BroadScanCoverage  bool   `mapstructure:"BROAD_SCAN_COVERAGE_PERIOD"`
}

// Load reads HL7FHIR_* environment variables into a Config, defaulting
// every field to the conversion engine's own defaults so an unconfigured
// CLI behaves identically to calling convert.Convert with no options.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HL7FHIR")
	v.AutomaticEnv()

	v.SetDefault("CATALOGUE_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GENERATE_TEST_INS", false)
	v.SetDefault("STRICT", false)
	v.SetDefault("BROAD_SCAN_COVERAGE_PERIOD", false)

	for _, key := range []string{"CATALOGUE_PATH", "LOG_LEVEL", "GENERATE_TEST_INS", "STRICT", "BROAD_SCAN_COVERAGE_PERIOD"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
