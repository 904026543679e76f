// Package tmpl holds the literal placeholders understood by behavior
// templates and the substitution shared by everything that renders them.
package tmpl

import (
	"path/filepath"
	"strings"
)

const (
	// RefName is replaced with the artifact or sub-behavior a file refers to.
	RefName = "$BEHAVIOR_REF_NAME"
	// DirRel is replaced with the behavior directory relative to the
	// invocation's working directory.
	DirRel = "$BEHAVIOR_DIR_REL"
)

// Substitute replaces every occurrence of each placeholder in vars.
// Replacement is single-pass, so a value containing another placeholder is
// left as written.
func Substitute(content string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// RelDir renders dir relative to workDir with forward slashes, falling back
// to dir itself when no relative form exists.
func RelDir(workDir, dir string) string {
	rel, err := filepath.Rel(workDir, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}
