// Package filter decides which entries of a source tree take part in a copy,
// using ordered rsync-style include/exclude rules plus optional size bounds.
package filter

import (
	"fmt"
	"strings"
)

// Rule is one include or exclude pattern.
type Rule struct {
	Include bool
	pat     *pattern
}

// String renders the rule in filter-file syntax ("+ pat" or "- pat").
func (r Rule) String() string {
	if r.Include {
		return "+ " + r.pat.source
	}
	return "- " + r.pat.source
}

// Chain is an ordered rule list. The first matching rule decides; an entry
// no rule matches is included.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a rule for pattern.
func (c *Chain) Add(include bool, pattern string) error {
	p, err := compile(pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	c.rules = append(c.rules, Rule{Include: include, pat: p})
	return nil
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error { return c.Add(false, pattern) }

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error { return c.Add(true, pattern) }

// SetSizeRange limits regular files to [minSize, maxSize] bytes. Zero
// disables a bound.
func (c *Chain) SetSizeRange(minSize, maxSize int64) error {
	if minSize < 0 || maxSize < 0 {
		return fmt.Errorf("size bounds must not be negative")
	}
	if maxSize > 0 && minSize > maxSize {
		return fmt.Errorf("minimum size %d exceeds maximum %d", minSize, maxSize)
	}
	c.minSize, c.maxSize = minSize, maxSize
	return nil
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Chain) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Empty reports whether the chain filters nothing.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

func (c *Chain) String() string {
	if c.Empty() {
		return "none"
	}
	parts := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		parts = append(parts, r.String())
	}
	if c.minSize > 0 || c.maxSize > 0 {
		parts = append(parts, fmt.Sprintf("size[%d,%d]", c.minSize, c.maxSize))
	}
	return strings.Join(parts, "; ")
}

// Match reports whether the entry at relPath (slash-separated, relative to
// the copy root) is included. Size bounds only apply to files.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !isDir && !c.sizeOK(size) {
		return false
	}
	for _, r := range c.rules {
		if r.pat.match(relPath, isDir) {
			return r.Include
		}
	}
	return true
}

func (c *Chain) sizeOK(size int64) bool {
	if c.minSize > 0 && size < c.minSize {
		return false
	}
	return c.maxSize == 0 || size <= c.maxSize
}
