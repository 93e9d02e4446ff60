package filtering

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gobwas/glob"
)

// NameFilter handles component name filtering using glob patterns
type NameFilter interface {
	// ShouldInclude determines if a component should be kept based on include/exclude patterns
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(name string, include, exclude []string) (bool, string)
}

// defaultNameFilter implements name filtering using glob patterns
type defaultNameFilter struct{}

var _ NameFilter = (*defaultNameFilter)(nil)

// NewDefaultNameFilter creates a new defaultNameFilter
func NewDefaultNameFilter() NameFilter {
	return &defaultNameFilter{}
}

// ValidatePatterns reports the first pattern that does not compile
func ValidatePatterns(patterns ...string) error {
	for _, pattern := range patterns {
		if _, err := compile(pattern); err != nil {
			return err
		}
	}
	return nil
}

func compile(pattern string) (glob.Glob, error) {
	// filepath.Match rejects malformed character classes that glob accepts
	if _, err := filepath.Match(pattern, "test"); err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	// No separators, so * also matches '/'
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return compiled, nil
}

func matchPattern(pattern, name string) (bool, error) {
	compiled, err := compile(pattern)
	if err != nil {
		return false, err
	}
	return compiled.Match(name), nil
}

// ShouldInclude determines if a component should be kept. Exclude patterns win over include patterns.
func (*defaultNameFilter) ShouldInclude(name string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		matches, err := matchPattern(pattern, name)
		if err != nil {
			return false, fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err)
		}
		if matches {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) > 0 {
		for _, pattern := range include {
			matches, err := matchPattern(pattern, name)
			if err != nil {
				return false, fmt.Sprintf("invalid include pattern '%s': %v", pattern, err)
			}
			if matches {
				return true, fmt.Sprintf("included by pattern '%s'", pattern)
			}
		}
		return false, fmt.Sprintf("no match found in include patterns %v", include)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", exclude)
	}
	return true, "no name filters specified"
}

// Apply returns the names kept by filter, preserving their order.
// Patterns are validated up front so a typo fails loudly instead of silently hiding every component.
func Apply(filter NameFilter, names, include, exclude []string) ([]string, error) {
	if err := ValidatePatterns(append(append([]string{}, include...), exclude...)...); err != nil {
		return nil, err
	}
	if len(include) == 0 && len(exclude) == 0 {
		return names, nil
	}

	kept := make([]string, 0, len(names))
	for _, name := range names {
		ok, reason := filter.ShouldInclude(name, include, exclude)
		slog.Debug("Component filter decision", "component", name, "included", ok, "reason", reason)
		if ok {
			kept = append(kept, name)
		}
	}
	return kept, nil
}
