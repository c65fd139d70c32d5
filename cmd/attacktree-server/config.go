package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/taraforge/attacktree/pkg/engine"
	"github.com/taraforge/attacktree/pkg/feasibility"
)

// Config is the server's YAML configuration. Environment variables override
// the file: ATTACKTREE_LISTEN_ADDR, ATTACKTREE_GRAPH_FILE, LOG_LEVEL.
type Config struct {
	ListenAddr string        `yaml:"listen_addr" validate:"required"`
	GraphFile  string        `yaml:"graph_file" validate:"required"`
	LogLevel   string        `yaml:"log_level"`
	Limits     engine.Limits `yaml:"limits"`

	// Feasibility overrides the default rating table when present.
	Feasibility []feasibility.Threshold `yaml:"feasibility,omitempty"`
	// FeasibilityFallback rates scores beyond every cutoff.
	FeasibilityFallback feasibility.Rating `yaml:"feasibility_fallback,omitempty"`
}

// LoadConfig reads, defaults, and validates the configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Limits:     engine.DefaultLimits(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("ATTACKTREE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ATTACKTREE_GRAPH_FILE"); v != "" {
		cfg.GraphFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if cfg.Limits.MaxDepth == 0 {
		cfg.Limits.MaxDepth = engine.DefaultLimits().MaxDepth
	}
	if cfg.Limits.MaxPaths == 0 {
		cfg.Limits.MaxPaths = engine.DefaultLimits().MaxPaths
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// FeasibilityPolicy builds the rating policy from the config, falling back to
// the standard table.
func (c *Config) FeasibilityPolicy() (feasibility.Policy, error) {
	if len(c.Feasibility) == 0 {
		return feasibility.DefaultPolicy(), nil
	}
	fallback := c.FeasibilityFallback
	if fallback == "" {
		fallback = feasibility.RatingVeryLow
	}
	policy, err := feasibility.NewPolicy(c.Feasibility, fallback)
	if err != nil {
		return feasibility.Policy{}, fmt.Errorf("invalid feasibility table: %w", err)
	}
	return policy, nil
}
