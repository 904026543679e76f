// Package decompose splits one behavior into several dependency-linked
// sub-behaviors by applying an externally generated plan.
package decompose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/store"
)

// Plan is the decomposition proposal produced outside this tool.
type Plan struct {
	BehaviorSource    SourceRef      `json:"behaviorSource" yaml:"behaviorSource"`
	BehaviorsProposed []Proposal     `json:"behaviorsProposed" yaml:"behaviorsProposed"`
	ContextAnalysis   map[string]any `json:"contextAnalysis,omitempty" yaml:"contextAnalysis,omitempty"`
	GeneratedAt       string         `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
}

// SourceRef names the behavior being split.
type SourceRef struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Proposal is one sub-behavior to create.
type Proposal struct {
	Name       string   `json:"name" yaml:"name"`
	DependsOn  []string `json:"dependsOn" yaml:"dependsOn"`
	Decomposed Content  `json:"decomposed" yaml:"decomposed"`
}

// Content seeds a sub-behavior's artifacts. A nil Vision keeps the
// scaffolded vision template.
type Content struct {
	Wish   string  `json:"wish" yaml:"wish"`
	Vision *string `json:"vision" yaml:"vision"`
}

// Load reads a plan document. JSON is detected by its leading brace;
// anything else is parsed as YAML.
func Load(fs store.FS, path string) (*Plan, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if store.IsNotExist(err) {
			return nil, badreq.NotFound("plan file not found: %s", path).
				WithHint("Generate one with 'behave decompose --mode plan' first.")
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan Plan
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		err = json.Unmarshal(data, &plan)
	} else {
		err = yaml.Unmarshal(data, &plan)
	}
	if err != nil {
		return nil, badreq.InvalidInput("plan %s is not a valid plan document: %v", filepath.Base(path), err)
	}
	return &plan, nil
}

// Validate checks the plan's shape. Problems that block application are
// returned as an error; dependencies on names the plan does not propose
// and the repository does not hold come back as warnings.
func Validate(plan *Plan, existing []string) (warnings []string, err error) {
	if len(plan.BehaviorsProposed) == 0 {
		return nil, badreq.InvalidInput("plan proposes no behaviors")
	}

	proposed := make(map[string]bool, len(plan.BehaviorsProposed))
	for _, p := range plan.BehaviorsProposed {
		if err := behavior.ValidateSlug(p.Name); err != nil {
			return nil, badreq.InvalidInput("plan proposes an unusable behavior: %v", err)
		}
		if proposed[p.Name] {
			return nil, badreq.InvalidInput("plan proposes '%s' more than once", p.Name)
		}
		if strings.TrimSpace(p.Decomposed.Wish) == "" {
			return nil, badreq.InvalidInput("plan gives '%s' an empty wish", p.Name)
		}
		proposed[p.Name] = true
	}

	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
		if _, slug, ok := behavior.ParseDirName(name); ok {
			known[slug] = true
		}
	}

	for _, p := range plan.BehaviorsProposed {
		for _, dep := range p.DependsOn {
			switch {
			case dep == p.Name:
				return nil, badreq.InvalidInput("'%s' depends on itself", p.Name)
			case proposed[dep], known[dep]:
			default:
				warnings = append(warnings, fmt.Sprintf("'%s' depends on '%s', which is neither proposed nor an existing behavior", p.Name, dep))
			}
		}
	}
	return warnings, nil
}
