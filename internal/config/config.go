// Package config holds the YAML run configuration. API credentials can come
// from the config file, a .env file, or the environment; environment values
// win so secrets stay out of committed configs.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bdc/internal/pipeline"
)

// APIConfig carries the BDC map API endpoint and the two auth header values
// issued with an API account.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Username  string `yaml:"username"`
	HashValue string `yaml:"hash_value"`
}

// RollupConfig enables the geography rollup and names the target level:
// state, county, tract, block_group, or block.
type RollupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// OutputConfig controls the export step.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	Format          string `yaml:"format"` // csv or xlsx
	AttachStateName bool   `yaml:"attach_state_name"`
}

// Config is one run's worth of selections.
type Config struct {
	AsOfDate     string   `yaml:"as_of_date"` // empty selects the latest availability date
	States       []string `yaml:"states"`
	Technologies []string `yaml:"technologies"`

	ResidentialOnly    bool     `yaml:"residential_only"`
	AnchorProviders    []int64  `yaml:"anchor_providers"`
	AnchorTechnologies []string `yaml:"anchor_technologies"`
	SecondaryFootprint bool     `yaml:"secondary_footprint"`
	ExcludeProviders   []int64  `yaml:"exclude_providers"`

	GroupOnSpeed      bool `yaml:"group_on_speed"`
	GroupOnTechnology bool `yaml:"group_on_technology"`

	Rollup RollupConfig `yaml:"rollup"`

	// GeoidFile optionally points at a CSV/XLSX/shapefile allow-list of
	// block GEOIDs to keep.
	GeoidFile string `yaml:"geoid_file"`

	Output OutputConfig `yaml:"output"`
	API    APIConfig    `yaml:"api"`

	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a runnable starting point: one small state, one
// technology, CSV output in the working directory.
func DefaultConfig() *Config {
	return &Config{
		States:       []string{"Kansas"},
		Technologies: []string{"Cable"},
		Rollup:       RollupConfig{Level: "county"},
		Output:       OutputConfig{Dir: ".", Format: "csv", AttachStateName: true},
		API:          APIConfig{BaseURL: ""}, // empty selects the public endpoint
	}
}

// Load reads the YAML config at path and applies .env and environment
// overrides for the credential fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if len(c.States) == 0 {
		return fmt.Errorf("states must not be empty")
	}
	if len(c.Technologies) == 0 {
		return fmt.Errorf("technologies must not be empty")
	}
	for _, s := range c.States {
		if !knownState(s) {
			return fmt.Errorf("unknown state %q", s)
		}
	}
	if c.Output.Format != "csv" && c.Output.Format != "xlsx" {
		return fmt.Errorf("output format must be csv or xlsx, got %q", c.Output.Format)
	}
	if c.Rollup.Enabled {
		if _, err := pipeline.ParseRollupLevel(c.Rollup.Level); err != nil {
			return err
		}
	}
	return nil
}

// PipelineOptions translates the config into the core's option set. The
// geography allow-list is loaded separately and attached by the caller.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	opts := pipeline.Options{
		ResidentialOnly:    c.ResidentialOnly,
		AnchorProviders:    c.AnchorProviders,
		AnchorTechs:        c.AnchorTechnologies,
		SecondaryFootprint: c.SecondaryFootprint,
		ExcludedProviders:  c.ExcludeProviders,
		GroupOnSpeed:       c.GroupOnSpeed,
		GroupOnTechnology:  c.GroupOnTechnology,
		Rollup:             c.Rollup.Enabled,
		AttachStateName:    c.Output.AttachStateName,
	}
	if c.Rollup.Enabled {
		level, err := pipeline.ParseRollupLevel(c.Rollup.Level)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.RollupLevel = level
	}
	return opts, nil
}

// applyEnv fills credential fields from the environment, loading a .env
// file first if one exists. Environment values override the config file.
func (c *Config) applyEnv() {
	loadEnvFile(".env")
	c.API.Username = getEnvOrDefault("BDC_USERNAME", c.API.Username)
	c.API.HashValue = getEnvOrDefault("BDC_HASH_VALUE", c.API.HashValue)
	c.API.BaseURL = getEnvOrDefault("BDC_BASE_URL", c.API.BaseURL)
}

// loadEnvFile reads KEY=VALUE lines into the environment without clobbering
// variables that are already set.
func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err // file doesn't exist, which is okay
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
				value = value[1 : len(value)-1]
			}
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}
	return scanner.Err()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
