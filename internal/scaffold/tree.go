package scaffold

import (
	"fmt"
	"io"
	"sort"
)

const (
	markCreated = "+"
	markKept    = "✓"
	markUpdated = "↻"
)

// RenderTree writes an alphabetically sorted tree of the result:
//
//	.behavior/v2026_01_01.feature
//	├── + 0.wish.md
//	├── ✓ 1.vision.md
//	└── ↻ 2.criteria.blackbox.md
func RenderTree(w io.Writer, r *Result) {
	type line struct{ mark, name string }

	var lines []line
	for _, n := range r.Created {
		lines = append(lines, line{markCreated, n})
	}
	for _, n := range r.Kept {
		lines = append(lines, line{markKept, n})
	}
	for _, n := range r.Updated {
		lines = append(lines, line{markUpdated, n})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].name < lines[j].name })

	fmt.Fprintln(w, r.DirRel)
	for i, l := range lines {
		branch := "├──"
		if i == len(lines)-1 {
			branch = "└──"
		}
		fmt.Fprintf(w, "%s %s %s\n", branch, l.mark, l.name)
	}
}
