package syncengine

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter decides whether a candidate path participates in a sync.
// Filters govern inclusion, not traversal: a rejected directory is still
// descended into.
type PathFilter interface {
	// ShouldInclude returns true if the file at the given relative path should be included
	ShouldInclude(relativePath string) bool
}

// FilterFunc adapts a plain function to the PathFilter interface.
type FilterFunc func(relativePath string) bool

// ShouldInclude calls f.
func (f FilterFunc) ShouldInclude(relativePath string) bool {
	return f(relativePath)
}

// acceptAll is the default filter used when none is configured.
type acceptAll struct{}

func (acceptAll) ShouldInclude(string) bool { return true }

// GlobFilter implements PathFilter using glob patterns
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern
// Empty pattern matches all files
func NewGlobFilter(pattern string) *GlobFilter {
	normalized := strings.ToLower(pattern)

	return &GlobFilter{
		normalizedPattern: normalized,
		isEmpty:           pattern == "",
	}
}

// ShouldInclude returns true if the file should be included based on the glob pattern
// Case-insensitive matching
func (f *GlobFilter) ShouldInclude(relativePath string) bool {
	// Empty pattern matches all files
	if f.isEmpty {
		return true
	}

	// Convert path to lowercase for case-insensitive matching
	normalizedPath := strings.ToLower(relativePath)

	matched, err := doublestar.Match(f.normalizedPattern, normalizedPath)
	if err != nil {
		// If pattern is invalid, don't match
		return false
	}

	return matched
}

// normalizeFilter returns the filter itself or the accept-all default.
// Invalid configuration falls back to the default rather than failing.
func normalizeFilter(f PathFilter) PathFilter {
	if f == nil {
		return acceptAll{}
	}

	return f
}
