// Package bind associates source-control branches with behavior directories.
//
// A bind is a flag file at {behaviorDir}/.bind/{Flatten(branch)}.flag. At most
// one behavior may hold the flag for a given branch; when more than one does,
// every read reports the ambiguity instead of picking one.
package bind

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/behavior"
	"github.com/dyluth/behave/internal/store"
)

const (
	// Dir is the per-behavior folder holding bind flags.
	Dir = ".bind"
	// FlagExt is the extension of a bind flag file.
	FlagExt = ".flag"

	// timestampLayout is ISO-8601 at millisecond precision in UTC.
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// DefaultProtectedBranches can never be bound.
var DefaultProtectedBranches = []string{"main", "master"}

// timeNow is swapped out by tests for deterministic flag timestamps.
var timeNow = time.Now

// BranchSource reports the branch checked out in the working directory.
type BranchSource interface {
	CurrentBranch() (string, error)
}

// Flag is the content of a bind flag file. The branch stored here is the
// source of truth for display; the filename only carries its flattened form.
type Flag struct {
	Branch  string `yaml:"branch"`
	BoundAt string `yaml:"bound_at"`
	BoundBy string `yaml:"bound_by"`
}

// Registry reads and writes bind flags across every behavior.
type Registry struct {
	fs        store.FS
	behaviors *behavior.Resolver
	branches  BranchSource
	actor     string
	protected map[string]bool
	logger    *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithActor sets the name recorded as the creator of new binds.
func WithActor(actor string) Option {
	return func(r *Registry) { r.actor = actor }
}

// WithProtectedBranches adds branches that may not be bound. main and
// master stay protected regardless.
func WithProtectedBranches(branches ...string) Option {
	return func(r *Registry) {
		for _, b := range branches {
			r.protected[b] = true
		}
	}
}

// NewRegistry creates a registry over the behaviors known to behaviors.
// branches supplies the branch for calls that do not name one.
func NewRegistry(fs store.FS, behaviors *behavior.Resolver, branches BranchSource, opts ...Option) *Registry {
	r := &Registry{
		fs:        fs,
		behaviors: behaviors,
		branches:  branches,
		actor:     "behave",
		protected: make(map[string]bool),
		logger:    zap.NewNop(),
	}
	for _, b := range DefaultProtectedBranches {
		r.protected[b] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsProtected reports whether branch may never be bound.
func (r *Registry) IsProtected(branch string) bool {
	return r.protected[branch]
}

// FlagPath is where the flag for branch lives inside behaviorDir.
func FlagPath(behaviorDir, branch string) string {
	return filepath.Join(behaviorDir, Dir, Flatten(branch)+FlagExt)
}

// BindResult describes the outcome of Bind.
type BindResult struct {
	Branch       string
	BehaviorDir  string
	FlagPath     string
	AlreadyBound bool
}

// Bind associates branch with behaviorDir. Binding a branch to the behavior
// it is already bound to is a no-op.
func (r *Registry) Bind(branch, behaviorDir string) (*BindResult, error) {
	branch, err := r.branchOrCurrent(branch)
	if err != nil {
		return nil, err
	}
	if r.IsProtected(branch) {
		return nil, badreq.InvalidInput("cannot bind protected branch '%s'", branch).
			WithHint("Check out a feature branch first:\n  git checkout -b feature/<name>")
	}
	if Flatten(branch) == "" {
		return nil, badreq.InvalidInput("branch name '%s' has no usable characters", branch)
	}

	exists, err := r.fs.Exists(behaviorDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check behavior directory: %w", err)
	}
	if !exists {
		return nil, badreq.NotFound("behavior directory does not exist: %s", behaviorDir)
	}

	q, err := r.Query(branch)
	if err != nil {
		return nil, err
	}

	result := &BindResult{Branch: branch, BehaviorDir: behaviorDir, FlagPath: FlagPath(behaviorDir, branch)}
	switch {
	case len(q.Binds) > 1:
		return nil, ambiguousBinds(branch, q.Binds)
	case len(q.Binds) == 1 && samePath(q.Binds[0], behaviorDir):
		result.AlreadyBound = true
		return result, nil
	case len(q.Binds) == 1:
		return nil, badreq.Conflict("branch '%s' is already bound to %s", branch, filepath.Base(q.Binds[0])).
			WithMatches(q.Binds).
			WithHint("Unbind it first with 'behave bind del'. To use another behavior for a single command, pass --behavior <name> --force to that command.")
	}

	content, err := yaml.Marshal(Flag{
		Branch:  branch,
		BoundAt: timeNow().UTC().Format(timestampLayout),
		BoundBy: r.actor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bind flag: %w", err)
	}

	if err := r.fs.MkdirAll(filepath.Dir(result.FlagPath)); err != nil {
		return nil, fmt.Errorf("failed to create bind directory: %w", err)
	}
	if err := r.fs.CreateExclusive(result.FlagPath, content); err != nil {
		if store.IsExist(err) {
			// Another invocation bound the same branch here first.
			result.AlreadyBound = true
			return result, nil
		}
		return nil, fmt.Errorf("failed to write bind flag: %w", err)
	}

	r.logger.Debug("bound branch",
		zap.String("branch", branch),
		zap.String("behavior", behaviorDir),
		zap.String("flag", result.FlagPath))
	return result, nil
}

// UnbindResult describes the outcome of Unbind.
type UnbindResult struct {
	Branch     string
	Removed    []string
	WasUnbound bool
}

// Unbind removes the bind flag for branch. A branch that was never bound
// unbinds successfully. If several behaviors hold a flag for the branch they
// are all removed, restoring the at-most-one invariant.
func (r *Registry) Unbind(branch string) (*UnbindResult, error) {
	q, err := r.Query(branch)
	if err != nil {
		return nil, err
	}

	result := &UnbindResult{Branch: q.Branch}
	if len(q.Binds) == 0 {
		result.WasUnbound = true
		return result, nil
	}

	for _, dir := range q.Binds {
		path := FlagPath(dir, q.Branch)
		if err := r.fs.Remove(path); err != nil && !store.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove bind flag %s: %w", path, err)
		}
		result.Removed = append(result.Removed, path)
		r.logger.Debug("unbound branch", zap.String("branch", q.Branch), zap.String("flag", path))
	}
	return result, nil
}

// QueryResult lists every behavior holding a flag for Branch. BehaviorDir is
// set only when exactly one does.
type QueryResult struct {
	Branch      string
	BehaviorDir string
	Binds       []string
}

// Query finds the behavior bound to branch, or to the current branch when
// branch is empty.
func (r *Registry) Query(branch string) (*QueryResult, error) {
	branch, err := r.branchOrCurrent(branch)
	if err != nil {
		return nil, err
	}

	names, err := r.behaviors.List()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Branch: branch}
	for _, name := range names {
		dir := filepath.Join(r.behaviors.Root(), name)
		found, err := r.fs.Exists(FlagPath(dir, branch))
		if err != nil {
			return nil, fmt.Errorf("failed to check bind flag in %s: %w", name, err)
		}
		if found {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve behavior path: %w", err)
			}
			result.Binds = append(result.Binds, abs)
		}
	}

	sort.Strings(result.Binds)
	if len(result.Binds) == 1 {
		result.BehaviorDir = result.Binds[0]
	}
	return result, nil
}

// Binding is one bind flag found on disk.
type Binding struct {
	Branch      string
	Flattened   string
	BehaviorDir string
	BoundAt     string
	BoundBy     string
}

// List returns every bind across all behaviors, ordered by behavior then branch.
func (r *Registry) List() ([]Binding, error) {
	names, err := r.behaviors.List()
	if err != nil {
		return nil, err
	}

	var bindings []Binding
	for _, name := range names {
		dir := filepath.Join(r.behaviors.Root(), name)
		files, err := store.Files(r.fs, filepath.Join(dir, Dir))
		if err != nil {
			return nil, fmt.Errorf("failed to list binds in %s: %w", name, err)
		}
		sort.Strings(files)

		for _, f := range files {
			if !strings.HasSuffix(f, FlagExt) {
				continue
			}
			b := Binding{Flattened: strings.TrimSuffix(f, FlagExt), BehaviorDir: dir}
			b.Branch = b.Flattened

			content, err := r.fs.ReadFile(filepath.Join(dir, Dir, f))
			if err != nil {
				return nil, fmt.Errorf("failed to read bind flag %s: %w", f, err)
			}
			var flag Flag
			if err := yaml.Unmarshal(content, &flag); err != nil {
				r.logger.Warn("unreadable bind flag", zap.String("flag", f), zap.Error(err))
			} else {
				if flag.Branch != "" {
					b.Branch = flag.Branch
				}
				b.BoundAt = flag.BoundAt
				b.BoundBy = flag.BoundBy
			}
			bindings = append(bindings, b)
		}
	}
	return bindings, nil
}

func (r *Registry) branchOrCurrent(branch string) (string, error) {
	if branch != "" {
		return branch, nil
	}
	if r.branches == nil {
		return "", fmt.Errorf("no branch given and no branch source configured")
	}
	current, err := r.branches.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("failed to determine current branch: %w", err)
	}
	return current, nil
}

func ambiguousBinds(branch string, binds []string) error {
	return badreq.Ambiguous("branch '%s' is bound to %d behaviors", branch, len(binds)).
		WithMatches(binds).
		WithHint("Remove the stray binds with 'behave bind del', then bind again.")
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
