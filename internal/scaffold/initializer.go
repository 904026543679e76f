// Package scaffold lays down the fixed set of template files every behavior
// starts with. Files already present are kept untouched, so re-running
// initialization never clobbers a customized artifact.
package scaffold

import (
	"embed"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/feedback"
	"github.com/dyluth/behave/internal/store"
	"github.com/dyluth/behave/internal/tmpl"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo maps one embedded template to the file it becomes.
type FileInfo struct {
	Name     string
	Template string
}

// Files is the template set, in creation order.
var Files = []FileInfo{
	{Name: "0.wish.md", Template: "templates/wish.md.tmpl"},
	{Name: "1.vision.md", Template: "templates/vision.md.tmpl"},
	{Name: "2.criteria.blackbox.md", Template: "templates/criteria.blackbox.md.tmpl"},
	{Name: "3.1.research.domain.v1.i1.md", Template: "templates/research.domain.md.tmpl"},
	{Name: "3.3.blueprint.v1.i1.md", Template: "templates/blueprint.md.tmpl"},
	{Name: "4.1.roadmap.v1.i1.md", Template: "templates/roadmap.md.tmpl"},
	{Name: "5.1.execution.v1.i1.md", Template: "templates/execution.md.tmpl"},
	{Name: feedback.TemplateName, Template: "templates/feedback.md.tmpl"},
}

// Result records what Init did with each file of the template set.
// Updated is never filled by Init itself; it is for callers that
// deliberately overwrite a file afterwards.
type Result struct {
	Dir     string
	DirRel  string
	Created []string
	Kept    []string
	Updated []string
}

// MarkUpdated records that name was overwritten after scaffolding.
func (r *Result) MarkUpdated(name string) {
	r.Created = without(r.Created, name)
	r.Kept = without(r.Kept, name)
	if !contains(r.Updated, name) {
		r.Updated = append(r.Updated, name)
		sort.Strings(r.Updated)
	}
}

// Initializer writes the template set into behavior directories.
type Initializer struct {
	fs     store.FS
	logger *zap.Logger
}

// NewInitializer creates an initializer writing through fs.
func NewInitializer(fs store.FS, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{fs: fs, logger: logger}
}

// Init ensures behaviorDir exists and holds every template file.
// behaviorDirRel replaces $BEHAVIOR_DIR_REL in newly written files.
func (i *Initializer) Init(behaviorDir, behaviorDirRel string) (*Result, error) {
	if err := i.fs.MkdirAll(behaviorDir); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", behaviorDir, err)
	}

	result := &Result{Dir: behaviorDir, DirRel: behaviorDirRel}
	for _, file := range Files {
		path := filepath.Join(behaviorDir, file.Name)

		exists, err := i.fs.Exists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", file.Name, err)
		}
		if exists {
			result.Kept = append(result.Kept, file.Name)
			continue
		}

		raw, err := templatesFS.ReadFile(file.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", file.Name, err)
		}
		content := tmpl.Substitute(string(raw), map[string]string{tmpl.DirRel: behaviorDirRel})

		if err := i.fs.CreateExclusive(path, []byte(content)); err != nil {
			if store.IsExist(err) {
				result.Kept = append(result.Kept, file.Name)
				continue
			}
			return nil, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
		result.Created = append(result.Created, file.Name)
		i.logger.Debug("scaffolded file", zap.String("file", path))
	}

	sort.Strings(result.Created)
	sort.Strings(result.Kept)
	return result, nil
}

// Missing lists the template files absent from behaviorDir.
func (i *Initializer) Missing(behaviorDir string) ([]string, error) {
	var missing []string
	for _, file := range Files {
		exists, err := i.fs.Exists(filepath.Join(behaviorDir, file.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", file.Name, err)
		}
		if !exists {
			missing = append(missing, file.Name)
		}
	}
	return missing, nil
}

func without(list []string, name string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
