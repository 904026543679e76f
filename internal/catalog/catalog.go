// Package catalog lists the files of a behavior directory classified by
// what they are, for inspection commands.
package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dyluth/behave/internal/feedback"
	"github.com/dyluth/behave/internal/grammar"
	"github.com/dyluth/behave/internal/store"
)

// Kind classifies a behavior file.
type Kind string

const (
	KindArtifact Kind = "artifact"
	KindFeedback Kind = "feedback"
	// KindTemplate is the per-behavior feedback template.
	KindTemplate Kind = "template"
	// KindSource is a generator's .src working file.
	KindSource Kind = "source"
)

// ParseKind validates a --kind value. "all" and "" select every kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "", "all":
		return "", nil
	case KindArtifact, KindFeedback, KindTemplate, KindSource:
		return k, nil
	}
	return "", fmt.Errorf("unknown kind: %s (valid: artifact, feedback, template, source, all)", s)
}

// Entry is one file of a behavior.
type Entry struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Ordinal  string    `json:"ordinal,omitempty"`
	Version  *int      `json:"version,omitempty"`
	Attempt  *int      `json:"attempt,omitempty"`
	Against  string    `json:"against,omitempty"`
	ModTime  time.Time `json:"modified"`
}

// Criteria defines filtering criteria for entries.
// All filters are ANDed together - an entry must match ALL criteria to pass.
type Criteria struct {
	NameGlob string    // Glob pattern for the filename, empty = no filter
	Kind     Kind      // Exact kind, empty = no filter
	Since    time.Time // Modified at or after, zero = no filter
	Until    time.Time // Modified at or before, zero = no filter
}

// Matches returns true if the entry matches all filter criteria.
func (c *Criteria) Matches(e Entry) bool {
	if !c.Since.IsZero() && e.ModTime.Before(c.Since) {
		return false
	}
	if !c.Until.IsZero() && e.ModTime.After(c.Until) {
		return false
	}

	if c.NameGlob != "" {
		matched, err := filepath.Match(c.NameGlob, e.Filename)
		if err != nil || !matched {
			return false
		}
	}

	if c.Kind != "" && e.Kind != c.Kind {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return !c.Since.IsZero() || !c.Until.IsZero() || c.NameGlob != "" || c.Kind != ""
}

// Classify decodes filename into an entry without path or timestamp.
func Classify(filename string) Entry {
	e := Entry{Filename: filename}

	switch {
	case filename == feedback.TemplateName:
		e.Kind = KindTemplate
		return e
	case grammar.IsFeedback(filename):
		e.Kind = KindFeedback
		against, v, ok := grammar.ParseFeedback(filename)
		if ok {
			e.Against = against
			e.Version = &v
		}
		return e
	case strings.HasSuffix(filename, grammar.SourceExt):
		e.Kind = KindSource
	default:
		e.Kind = KindArtifact
	}

	parsed := grammar.Parse(filename)
	e.Name = parsed.Name
	e.Ordinal = parsed.Ordinal
	if parsed.Version != grammar.Absent {
		e.Version = &parsed.Version
	}
	if parsed.Attempt != grammar.Absent {
		e.Attempt = &parsed.Attempt
	}
	return e
}

// Catalog reads behavior directories.
type Catalog struct {
	fs store.FS
}

// New creates a catalog reading through fs.
func New(fs store.FS) *Catalog {
	return &Catalog{fs: fs}
}

// List returns the files of behaviorDir that match criteria, sorted by
// filename. Markdown and .src files are listed; anything else, including
// the .bind directory, is skipped.
func (c *Catalog) List(behaviorDir string, criteria *Criteria) ([]Entry, error) {
	dirEntries, err := c.fs.ReadDir(behaviorDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", behaviorDir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir {
			continue
		}
		if !strings.HasSuffix(de.Name, grammar.MarkdownExt) && !strings.HasSuffix(de.Name, grammar.SourceExt) {
			continue
		}

		e := Classify(de.Name)
		e.Path = filepath.Join(behaviorDir, de.Name)
		e.ModTime = de.ModTime
		if criteria != nil && !criteria.Matches(e) {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Filename < entries[j].Filename
	})
	return entries, nil
}
