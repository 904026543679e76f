package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the per-repository configuration file, read from the repo root.
const FileName = ".behave.yml"

// DefaultBehaviorRoot is where behaviors live when behavior_root is unset.
const DefaultBehaviorRoot = ".behavior"

// alwaysProtected can never be bound, whatever the file says.
var alwaysProtected = []string{"main", "master"}

// FeedbackConfig specifies feedback defaults
type FeedbackConfig struct {
	Template string `yaml:"template,omitempty"` // Template override, relative to the repo root
}

// BehaveConfig represents the top-level .behave.yml configuration
type BehaveConfig struct {
	Version           string          `yaml:"version"`
	BehaviorRoot      string          `yaml:"behavior_root,omitempty"`
	Actor             string          `yaml:"actor,omitempty"` // Recorded as bound_by in bind flags
	ProtectedBranches []string        `yaml:"protected_branches,omitempty"`
	Feedback          *FeedbackConfig `yaml:"feedback,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *BehaveConfig {
	c := &BehaveConfig{Version: "1.0"}
	// A versioned config with no other fields always validates.
	_ = c.Validate()
	return c
}

// Validate performs strict validation on the configuration and fills defaults
func (c *BehaveConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.BehaviorRoot == "" {
		c.BehaviorRoot = DefaultBehaviorRoot
	}
	if strings.HasPrefix(c.BehaviorRoot, "/") || strings.Contains(c.BehaviorRoot, "..") {
		return fmt.Errorf("behavior_root must stay inside the repository, got %s", c.BehaviorRoot)
	}

	if c.Actor == "" {
		c.Actor = "human"
	}

	protected := append([]string(nil), alwaysProtected...)
	for _, branch := range c.ProtectedBranches {
		branch = strings.TrimSpace(branch)
		if branch == "" {
			return fmt.Errorf("protected_branches cannot contain an empty branch name")
		}
		if !contains(protected, branch) {
			protected = append(protected, branch)
		}
	}
	c.ProtectedBranches = protected

	if c.Feedback == nil {
		c.Feedback = &FeedbackConfig{}
	}

	return nil
}

// Load reads and validates .behave.yml from the specified path.
// A missing file yields the defaults.
func Load(path string) (*BehaveConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config BehaveConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
