package behavior

import (
	"fmt"
	"regexp"
	"time"
)

const (
	// RootDir is the directory, relative to the repository root, that holds
	// every behavior.
	RootDir = ".behavior"

	// MaxSlugLength keeps directory names comfortably inside filesystem limits.
	MaxSlugLength = 80

	dateLayout = "2006_01_02"
)

var (
	// SlugPattern is the allowed shape of a behavior name.
	SlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

	dirNamePattern = regexp.MustCompile(`^v(\d{4}_\d{2}_\d{2})\.(.+)$`)
)

// ValidateSlug checks that a behavior name can be used as a directory suffix.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("behavior name cannot be empty")
	}

	if len(slug) > MaxSlugLength {
		return fmt.Errorf("behavior name too long: %d characters (max: %d)", len(slug), MaxSlugLength)
	}

	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("invalid behavior name '%s': must be lowercase alphanumeric with '.', '_' or '-' (not at start)", slug)
	}

	return nil
}

// DirName returns the directory name for a behavior created on date.
func DirName(date time.Time, slug string) string {
	return fmt.Sprintf("v%s.%s", date.Format(dateLayout), slug)
}

// ParseDirName splits a behavior directory name into its creation date and slug.
func ParseDirName(name string) (time.Time, string, bool) {
	m := dirNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return time.Time{}, "", false
	}
	return date, m[2], true
}
