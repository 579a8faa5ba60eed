// Package ignore implements the Ignore-Rule Matcher: per-rule glob
// suppression of alerts against paths relative to the scan root.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"aegis/internal/config"
)

// Matcher evaluates a path against the configured ignore rules for a
// rule-id.
type Matcher struct {
	rules config.IgnoreRules
	root  string
}

// New returns a Matcher that resolves paths relative to root.
func New(root string, rules config.IgnoreRules) *Matcher {
	return &Matcher{rules: rules, root: root}
}

// Ignored reports whether ruleID is suppressed for absPath: true iff any
// configured glob for ruleID matches the path relative to the scan root,
// with basename-fallback so a bare filename pattern matches anywhere in
// the tree.
func (m *Matcher) Ignored(ruleID, absPath string) bool {
	patterns := m.rules.Patterns(ruleID)
	if len(patterns) == 0 {
		return false
	}

	rel, err := filepath.Rel(m.root, absPath)
	if err != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)

	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}
