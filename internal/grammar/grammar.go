// Package grammar encodes and decodes the metadata carried in behavior
// filenames: the logical artifact name, its version (.vN) and attempt (.iN),
// and the suffix that marks a file as feedback against another file.
//
//	5.1.execution.v2.i1.md
//	└─┬─┘ └───┬───┘ └┬┘└┬┘
//	ordinal  name  ver attempt
//
//	0.wish.md.[feedback].v1.[given].by_human.md
//	└───┬───┘ └──────────────┬────────────────┘
//	 against         feedback version 1
package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Absent marks a missing version or attempt. It ranks below every present value.
const Absent = -1

const (
	// MarkdownExt is the extension of rendered artifacts.
	MarkdownExt = ".md"
	// SourceExt is the extension of a generator's working file; it sits
	// beside its rendered .md sibling and is never a resolution target.
	SourceExt = ".src"
	// FeedbackMarker appears in every feedback filename.
	FeedbackMarker = "[feedback]"
)

var (
	versionSegment = regexp.MustCompile(`^v(\d+)$`)
	attemptSegment = regexp.MustCompile(`^i(\d+)$`)
	ordinalSegment = regexp.MustCompile(`^\d+$`)
)

// Parsed is the decoded form of an artifact filename.
type Parsed struct {
	// Ordinal is the leading numeric prefix ("5.1"), empty if none.
	Ordinal string
	// Name is the logical artifact name ("execution", "criteria.blackbox").
	Name    string
	Version int
	Attempt int
	Ext     string
}

// Parse decodes an artifact filename. Version and attempt tokens are
// independent; either may be Absent.
func Parse(filename string) Parsed {
	p := Parsed{Version: Absent, Attempt: Absent}

	stem := filename
	for _, ext := range []string{MarkdownExt, SourceExt} {
		if strings.HasSuffix(stem, ext) {
			p.Ext = ext
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}

	var ordinal, name []string
	for i, seg := range strings.Split(stem, ".") {
		switch {
		case len(name) == 0 && ordinalSegment.MatchString(seg) && i == len(ordinal):
			ordinal = append(ordinal, seg)
		case versionSegment.MatchString(seg) && len(name) > 0:
			p.Version = atoi(versionSegment.FindStringSubmatch(seg)[1])
		case attemptSegment.MatchString(seg) && len(name) > 0:
			p.Attempt = atoi(attemptSegment.FindStringSubmatch(seg)[1])
		default:
			name = append(name, seg)
		}
	}

	p.Ordinal = strings.Join(ordinal, ".")
	p.Name = strings.Join(name, ".")
	return p
}

// Stem is the ordinal and name joined, the part Render takes as its name.
func (p Parsed) Stem() string {
	if p.Ordinal == "" {
		return p.Name
	}
	return p.Ordinal + "." + p.Name
}

// Render encodes name, version and attempt as a markdown filename.
// Pass Absent to omit a token.
func Render(name string, version, attempt int) string {
	var b strings.Builder
	b.WriteString(name)
	if version != Absent {
		fmt.Fprintf(&b, ".v%d", version)
	}
	if attempt != Absent {
		fmt.Fprintf(&b, ".i%d", attempt)
	}
	b.WriteString(MarkdownExt)
	return b.String()
}

// Pattern compiles a regular expression from template, substituting each
// %s with the regexp-quoted form of the matching literal. It is the only
// place user-supplied names become part of a pattern.
func Pattern(template string, literals ...string) *regexp.Regexp {
	quoted := make([]any, len(literals))
	for i, l := range literals {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(fmt.Sprintf(template, quoted...))
}

// ArtifactPattern matches markdown files carrying the logical name at a
// delimiter boundary, so "criteria.blackbox" never matches
// "criteria.blueprint".
func ArtifactPattern(name string) *regexp.Regexp {
	return Pattern(`(?:^|\.)%s(?:\.[^.]+)*\.md$`, name)
}

// IsFeedback reports whether filename is a feedback file.
func IsFeedback(filename string) bool {
	return strings.Contains(filename, FeedbackMarker)
}

// FeedbackName is the filename of feedback version v against artifactFilename.
func FeedbackName(artifactFilename string, version int) string {
	return fmt.Sprintf("%s.%s.v%d.[given].by_human.md", artifactFilename, FeedbackMarker, version)
}

// FeedbackPattern matches every feedback file against artifactFilename and
// captures its version.
func FeedbackPattern(artifactFilename string) *regexp.Regexp {
	return Pattern(`^%s\.\[feedback\]\.v(\d+)\.`, artifactFilename)
}

var anyFeedback = regexp.MustCompile(`^(.+)\.\[feedback\]\.v(\d+)\.`)

// ParseFeedback splits a feedback filename into the artifact it targets
// and its feedback version.
func ParseFeedback(filename string) (against string, version int, ok bool) {
	m := anyFeedback.FindStringSubmatch(filename)
	if m == nil {
		return "", 0, false
	}
	return m[1], atoi(m[2]), true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Only reachable for digit runs that overflow int.
		return Absent
	}
	return n
}
