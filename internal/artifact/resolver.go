// Package artifact locates the latest version of a logical artifact
// inside a behavior directory.
package artifact

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/store"
)

// Artifact is one resolvable file of a behavior.
type Artifact struct {
	Path     string
	Filename string
	Name     string
	// Version and Attempt are grammar.Absent when the filename carries none.
	Version int
	Attempt int
}

// Resolver finds artifacts by logical name.
type Resolver struct {
	fs store.FS
}

// NewResolver creates a resolver reading through fs.
func NewResolver(fs store.FS) *Resolver {
	return &Resolver{fs: fs}
}

// Candidates returns every file in behaviorDir that resolves as artifactName,
// best first. Feedback files and .src working files are never candidates.
func (r *Resolver) Candidates(behaviorDir, artifactName string) ([]Artifact, error) {
	files, err := store.Files(r.fs, behaviorDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", behaviorDir, err)
	}

	pattern := grammar.ArtifactPattern(artifactName)
	var candidates []Artifact
	for _, filename := range files {
		if grammar.IsFeedback(filename) || strings.HasSuffix(filename, grammar.SourceExt) {
			continue
		}
		if !pattern.MatchString(filename) {
			continue
		}
		parsed := grammar.Parse(filename)
		candidates = append(candidates, Artifact{
			Path:     filepath.Join(behaviorDir, filename),
			Filename: filename,
			Name:     artifactName,
			Version:  parsed.Version,
			Attempt:  parsed.Attempt,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return Outranks(candidates[i], candidates[j])
	})
	return candidates, nil
}

// ResolveLatest returns the latest artifactName in behaviorDir, or nil when
// nothing matches.
func (r *Resolver) ResolveLatest(behaviorDir, artifactName string) (*Artifact, error) {
	candidates, err := r.Candidates(behaviorDir, artifactName)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

// Outranks orders artifacts by version descending, then attempt descending.
// An absent token ranks below any present one. Remaining ties fall back to
// the filename, descending, so the order never depends on directory listing.
func Outranks(a, b Artifact) bool {
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	if a.Attempt != b.Attempt {
		return a.Attempt > b.Attempt
	}
	return a.Filename > b.Filename
}
