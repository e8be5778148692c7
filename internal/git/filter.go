package git

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter restricts changed files by glob. Exclude patterns win over
// include patterns; an empty include list accepts every path.
type PathFilter struct {
	Include []string
	Exclude []string
}

// Validate reports the first malformed pattern.
func (f PathFilter) Validate() error {
	for _, pattern := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// Match reports whether path passes the filter. Patterns must have been
// validated; a malformed pattern never matches.
func (f PathFilter) Match(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}
