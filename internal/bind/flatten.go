package bind

import (
	"regexp"
	"strings"
)

var unsafeFlagChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Flatten turns a branch name into a flag filename stem: '/' becomes '.',
// anything else outside [A-Za-z0-9._-] becomes '_', and trailing '_' are
// dropped. Flatten(Flatten(b)) == Flatten(b).
//
//	feature/x        -> feature.x
//	feature@v2#test  -> feature_v2_test
func Flatten(branch string) string {
	s := strings.ReplaceAll(branch, "/", ".")
	s = unsafeFlagChars.ReplaceAllString(s, "_")
	return strings.TrimRight(s, "_")
}
