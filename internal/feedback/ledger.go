// Package feedback records structured feedback rounds against individual
// artifact versions. Giving feedback is a findsert: an existing feedback file
// is returned untouched, otherwise a new one is rendered from the behavior's
// feedback template.
package feedback

import (
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/artifact"
	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/bind"
	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/store"
	"github.com/dyluth/behave/internal/tmpl"
)

// TemplateName is the feedback template every scaffolded behavior carries.
const TemplateName = ".ref.[feedback].v1.[given].by_human.md"

// Ledger computes, finds and creates feedback files.
type Ledger struct {
	fs        store.FS
	artifacts *artifact.Resolver
	registry  *bind.Registry
	workDir   string
	logger    *zap.Logger
}

// NewLedger creates a ledger. workDir anchors relative template paths and
// the $BEHAVIOR_DIR_REL placeholder.
func NewLedger(fs store.FS, artifacts *artifact.Resolver, registry *bind.Registry, workDir string, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		fs:        fs,
		artifacts: artifacts,
		registry:  registry,
		workDir:   workDir,
		logger:    logger,
	}
}

// ComputeName returns the feedback filename for version of artifactFilename.
func ComputeName(artifactFilename string, version int) string {
	return grammar.FeedbackName(artifactFilename, version)
}

// LatestVersion returns the highest feedback version recorded against
// artifactFilename in behaviorDir. ok is false when there is none.
func (l *Ledger) LatestVersion(behaviorDir, artifactFilename string) (latest int, ok bool, err error) {
	files, err := store.Files(l.fs, behaviorDir)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list %s: %w", behaviorDir, err)
	}

	pattern := grammar.FeedbackPattern(artifactFilename)
	for _, f := range files {
		m := pattern.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !ok || v > latest {
			latest, ok = v, true
		}
	}
	return latest, ok, nil
}

// GiveRequest selects the artifact to give feedback against.
type GiveRequest struct {
	// Against is the logical artifact name, e.g. "wish" or "execution".
	Against string
	// Behavior overrides the branch bind; see bind.OperationRequest.
	Behavior string
	Branch   string
	Force    bool
	// Version is the feedback version to findsert; 0 means 1.
	Version int
	// Next targets one past the latest existing version.
	Next bool
	// Fresh refuses to return an existing feedback file.
	Fresh bool
	// TemplatePath overrides the behavior's feedback template.
	TemplatePath string
}

// GiveResult is the feedback file found or created.
type GiveResult struct {
	FeedbackFile string
	ArtifactFile string
	BehaviorDir  string
	Version      int
	Found        bool
}

// Give findserts the feedback file for req.
func (l *Ledger) Give(req GiveRequest) (*GiveResult, error) {
	if req.Against == "" {
		return nil, badreq.InvalidInput("an artifact to give feedback against is required").
			WithHint("Pass --against <name>, e.g. --against wish")
	}
	if req.Version < 0 {
		return nil, badreq.InvalidInput("feedback version must be positive, got %d", req.Version)
	}
	if req.Next && req.Version != 0 {
		return nil, badreq.InvalidInput("--next and --version cannot be combined")
	}

	res, err := l.registry.ResolveForOperation(bind.OperationRequest{
		Branch:   req.Branch,
		Behavior: req.Behavior,
		Force:    req.Force,
	})
	if err != nil {
		return nil, err
	}
	behaviorDir := res.BehaviorDir

	target, err := l.artifacts.ResolveLatest(behaviorDir, req.Against)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, badreq.NotFound("no '%s' artifact in %s", req.Against, filepath.Base(behaviorDir)).
			WithHint("Check the artifact name, or create it first.")
	}

	latest, hasLatest, err := l.LatestVersion(behaviorDir, target.Filename)
	if err != nil {
		return nil, err
	}

	version := req.Version
	switch {
	case req.Next && hasLatest:
		version = latest + 1
	case version == 0:
		version = 1
	}

	result := &GiveResult{
		FeedbackFile: filepath.Join(behaviorDir, ComputeName(target.Filename, version)),
		ArtifactFile: target.Path,
		BehaviorDir:  behaviorDir,
		Version:      version,
	}

	exists, err := l.fs.Exists(result.FeedbackFile)
	if err != nil {
		return nil, fmt.Errorf("failed to check feedback file: %w", err)
	}
	if exists {
		if req.Fresh {
			return nil, badreq.AlreadyExists("feedback v%d against %s already exists", version, target.Filename).
				WithMatches([]string{result.FeedbackFile}).
				WithHint("Give a new round with --version %d (or --next).", latest+1)
		}
		result.Found = true
		l.logger.Debug("feedback already present", zap.String("file", result.FeedbackFile))
		return result, nil
	}

	template, err := l.loadTemplate(behaviorDir, req.TemplatePath)
	if err != nil {
		return nil, err
	}

	content := tmpl.Substitute(template, map[string]string{
		tmpl.RefName: target.Filename,
		tmpl.DirRel:  tmpl.RelDir(l.workDir, behaviorDir),
	})

	if err := l.fs.CreateExclusive(result.FeedbackFile, []byte(content)); err != nil {
		if store.IsExist(err) {
			result.Found = true
			return result, nil
		}
		return nil, fmt.Errorf("failed to write feedback file: %w", err)
	}

	l.logger.Debug("created feedback",
		zap.String("file", result.FeedbackFile),
		zap.String("against", target.Filename),
		zap.Int("version", version))
	return result, nil
}

func (l *Ledger) loadTemplate(behaviorDir, override string) (string, error) {
	path := filepath.Join(behaviorDir, TemplateName)
	if override != "" {
		path = override
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.workDir, path)
		}
	}

	content, err := l.fs.ReadFile(path)
	if err != nil {
		if store.IsNotExist(err) {
			return "", badreq.NotFound("feedback template not found: %s", path).
				WithHint("Re-run 'behave init' to restore the template, or pass --template <path>.")
		}
		return "", fmt.Errorf("failed to read feedback template: %w", err)
	}
	return string(content), nil
}
