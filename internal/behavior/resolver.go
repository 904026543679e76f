// Package behavior finds behavior directories under the repository's
// .behavior root, either by fuzzy name fragment or by exact slug.
package behavior

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/behave/internal/badreq"
	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/store"
)

// Resolver looks up behavior directories below a single root.
type Resolver struct {
	fs   store.FS
	root string
}

// NewResolver creates a resolver for the behaviors stored in root
// (normally {repo}/.behavior).
func NewResolver(fs store.FS, root string) *Resolver {
	return &Resolver{fs: fs, root: root}
}

// Root returns the directory that holds every behavior.
func (r *Resolver) Root() string {
	return r.root
}

// List returns the names of all behavior directories, sorted.
// Hidden directories are skipped.
func (r *Resolver) List() ([]string, error) {
	dirs, err := store.Dirs(r.fs, r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list behaviors in %s: %w", r.root, err)
	}

	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if strings.HasPrefix(d, ".") {
			continue
		}
		names = append(names, d)
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the absolute path of the one behavior whose directory name
// contains fragment. A fragment that is itself a path is reduced to its base.
func (r *Resolver) Resolve(fragment string) (string, error) {
	fragment = strings.TrimSpace(fragment)
	if strings.ContainsRune(fragment, filepath.Separator) || strings.Contains(fragment, "/") {
		fragment = filepath.Base(filepath.Clean(fragment))
	}
	if fragment == "" {
		return "", badreq.InvalidInput("behavior name cannot be empty")
	}

	names, err := r.List()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, name := range names {
		if strings.Contains(name, fragment) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", badreq.NotFound("no behavior found matching '%s'", fragment).
			WithMatches(names).
			WithHint("Create one with:\n  behave init --name %s", fragment)
	case 1:
		return r.abs(matches[0])
	default:
		return "", badreq.Ambiguous("behavior name '%s' matches %d behaviors", fragment, len(matches)).
			WithMatches(matches).
			WithHint("Use a longer name to identify exactly one behavior.")
	}
}

// FindExact locates the behavior created for slug on any date, matching the
// v{date}.{slug} form only. It returns "" when none exists.
func (r *Resolver) FindExact(slug string) (string, error) {
	names, err := r.List()
	if err != nil {
		return "", err
	}

	pattern := grammar.Pattern(`^v\d{4}_\d{2}_\d{2}\.%s$`, slug)
	var matches []string
	for _, name := range names {
		if pattern.MatchString(name) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return r.abs(matches[0])
	default:
		return "", badreq.Ambiguous("behavior '%s' exists under %d dates", slug, len(matches)).
			WithMatches(matches).
			WithHint("Remove the duplicate directories or pick one with --behavior.")
	}
}

func (r *Resolver) abs(name string) (string, error) {
	path, err := filepath.Abs(filepath.Join(r.root, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve behavior path: %w", err)
	}
	return path, nil
}
