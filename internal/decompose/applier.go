package decompose

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/artifact"
	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/scaffold"
	"github.com/dyluth/behave/internal/store"
	"github.com/dyluth/behave/internal/tmpl"
)

const (
	// MarkerName is written into the source behavior once a plan is applied.
	MarkerName = "0.decomposed.md"
	// markerArtifact is the logical name the marker resolves under.
	markerArtifact = "decomposed"

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var timeNow = time.Now

// Applier materializes plans into sub-behavior directories.
type Applier struct {
	fs        store.FS
	behaviors *behavior.Resolver
	artifacts *artifact.Resolver
	scaffold  *scaffold.Initializer
	workDir   string
	logger    *zap.Logger
}

// NewApplier creates an applier. workDir anchors the relative paths
// substituted into sub-behavior content.
func NewApplier(fs store.FS, behaviors *behavior.Resolver, workDir string, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		fs:        fs,
		behaviors: behaviors,
		artifacts: artifact.NewResolver(fs),
		scaffold:  scaffold.NewInitializer(fs, logger),
		workDir:   workDir,
		logger:    logger,
	}
}

// IsDecomposed reports whether sourceDir already carries a decomposed marker.
func (a *Applier) IsDecomposed(sourceDir string) (bool, error) {
	marker, err := a.artifacts.ResolveLatest(sourceDir, markerArtifact)
	if err != nil {
		return false, err
	}
	return marker != nil, nil
}

// Target is a sub-behavior directory a plan creates.
type Target struct {
	Name      string
	Dir       string
	DependsOn []string
}

// Preview is the outcome of checking a plan without applying it.
type Preview struct {
	Targets           []Target
	Warnings          []string
	AlreadyDecomposed bool
}

// Preview validates plan against sourceDir and lists what Apply would create.
// An already decomposed source is a warning here, not an error.
func (a *Applier) Preview(sourceDir string, plan *Plan) (*Preview, error) {
	decomposed, err := a.IsDecomposed(sourceDir)
	if err != nil {
		return nil, err
	}

	warnings, err := a.validate(sourceDir, plan)
	if err != nil {
		return nil, err
	}
	if decomposed {
		warnings = append(warnings, fmt.Sprintf("%s is already decomposed; applying a new plan will be refused", filepath.Base(sourceDir)))
	}

	return &Preview{
		Targets:           a.targets(plan),
		Warnings:          warnings,
		AlreadyDecomposed: decomposed,
	}, nil
}

// Applied is one sub-behavior created by Apply.
type Applied struct {
	Target
	Scaffold *scaffold.Result
}

// Outcome describes a completed application.
type Outcome struct {
	ID         string
	SourceDir  string
	MarkerPath string
	Behaviors  []Applied
	Warnings   []string
}

// Apply creates every proposed sub-behavior, seeds its wish and vision from
// the plan and marks sourceDir decomposed. A source that is already marked
// is refused. Dependencies are recorded, not enforced.
func (a *Applier) Apply(sourceDir string, plan *Plan) (*Outcome, error) {
	decomposed, err := a.IsDecomposed(sourceDir)
	if err != nil {
		return nil, err
	}
	if decomposed {
		return nil, badreq.Conflict("%s is already decomposed", filepath.Base(sourceDir)).
			WithMatches([]string{filepath.Join(sourceDir, MarkerName)}).
			WithHint("Work on the sub-behaviors it was split into, or remove %s to split it again.", MarkerName)
	}

	warnings, err := a.validate(sourceDir, plan)
	if err != nil {
		return nil, err
	}

	targets := a.targets(plan)
	for _, t := range targets {
		existing, err := a.behaviors.FindExact(t.Name)
		if err != nil {
			return nil, err
		}
		if existing != "" {
			return nil, badreq.Conflict("behavior '%s' already exists", t.Name).
				WithMatches([]string{existing}).
				WithHint("Rename the proposal in the plan.")
		}
	}

	// Until the marker is written, a failure removes every directory this
	// call created so the same plan can be applied again.
	var created []string
	committed := false
	defer func() {
		if !committed {
			a.rollback(created)
		}
	}()

	outcome := &Outcome{ID: uuid.NewString(), SourceDir: sourceDir, Warnings: warnings}
	for i, t := range targets {
		exists, err := a.fs.Exists(t.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", t.Dir, err)
		}
		if !exists {
			created = append(created, t.Dir)
		}

		applied, err := a.materialize(t, plan.BehaviorsProposed[i].Decomposed)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", t.Name, err)
		}
		outcome.Behaviors = append(outcome.Behaviors, *applied)
	}

	outcome.MarkerPath = filepath.Join(sourceDir, MarkerName)
	if err := a.fs.CreateExclusive(outcome.MarkerPath, []byte(a.renderMarker(outcome, plan))); err != nil {
		if store.IsExist(err) {
			return nil, badreq.Conflict("%s was decomposed concurrently", filepath.Base(sourceDir))
		}
		return nil, fmt.Errorf("failed to write decomposed marker: %w", err)
	}
	committed = true

	a.logger.Debug("applied decomposition",
		zap.String("id", outcome.ID),
		zap.String("source", sourceDir),
		zap.Int("behaviors", len(outcome.Behaviors)))
	return outcome, nil
}

func (a *Applier) rollback(dirs []string) {
	for _, dir := range dirs {
		if err := a.fs.RemoveAll(dir); err != nil {
			a.logger.Warn("failed to remove partially applied behavior", zap.String("dir", dir), zap.Error(err))
			continue
		}
		a.logger.Debug("removed partially applied behavior", zap.String("dir", dir))
	}
}

func (a *Applier) validate(sourceDir string, plan *Plan) ([]string, error) {
	if plan.BehaviorSource.Path != "" && filepath.Base(filepath.Clean(plan.BehaviorSource.Path)) != filepath.Base(sourceDir) {
		return nil, badreq.InvalidInput("plan was generated for %s, not %s",
			filepath.Base(plan.BehaviorSource.Path), filepath.Base(sourceDir))
	}

	existing, err := a.behaviors.List()
	if err != nil {
		return nil, err
	}
	return Validate(plan, existing)
}

func (a *Applier) targets(plan *Plan) []Target {
	today := timeNow()
	targets := make([]Target, 0, len(plan.BehaviorsProposed))
	for _, p := range plan.BehaviorsProposed {
		targets = append(targets, Target{
			Name:      p.Name,
			Dir:       filepath.Join(a.behaviors.Root(), behavior.DirName(today, p.Name)),
			DependsOn: p.DependsOn,
		})
	}
	return targets
}

func (a *Applier) materialize(t Target, content Content) (*Applied, error) {
	rel := tmpl.RelDir(a.workDir, t.Dir)
	result, err := a.scaffold.Init(t.Dir, rel)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{tmpl.RefName: t.Name, tmpl.DirRel: rel}
	seeds := []struct {
		artifact string
		fallback string
		body     *string
	}{
		{"wish", "0.wish", &content.Wish},
		{"vision", "1.vision", content.Vision},
	}
	for _, s := range seeds {
		if s.body == nil {
			continue
		}
		filename := grammar.Render(s.fallback, grammar.Absent, grammar.Absent)
		if latest, err := a.artifacts.ResolveLatest(t.Dir, s.artifact); err != nil {
			return nil, err
		} else if latest != nil {
			filename = latest.Filename
		}

		if err := a.fs.WriteFile(filepath.Join(t.Dir, filename), []byte(tmpl.Substitute(*s.body, vars))); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", filename, err)
		}
		result.MarkUpdated(filename)
	}

	return &Applied{Target: t, Scaffold: result}, nil
}

func (a *Applier) renderMarker(o *Outcome, plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# decomposed\n\n")
	fmt.Fprintf(&b, "> source: %s\n", tmpl.RelDir(a.workDir, o.SourceDir))
	fmt.Fprintf(&b, "> applied: %s\n", timeNow().UTC().Format(timestampLayout))
	fmt.Fprintf(&b, "> application: %s\n", o.ID)
	if plan.GeneratedAt != "" {
		fmt.Fprintf(&b, "> plan generated: %s\n", plan.GeneratedAt)
	}
	fmt.Fprintf(&b, "\n## behaviors\n\n")
	for _, ab := range o.Behaviors {
		deps := "none"
		if len(ab.DependsOn) > 0 {
			deps = strings.Join(ab.DependsOn, ", ")
		}
		fmt.Fprintf(&b, "- %s\n  - dir: %s\n  - dependsOn: %s\n", ab.Name, tmpl.RelDir(a.workDir, ab.Dir), deps)
	}
	return b.String()
}
