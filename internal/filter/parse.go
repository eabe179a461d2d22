package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile appends the rules in the file at path to the chain.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()
	return c.Parse(f, path)
}

// Parse reads filter rules, one per line:
//
//	+ pattern / include pattern   include
//	- pattern / exclude pattern   exclude
//	pattern                       exclude
//	# comment, blank line         ignored
//
// name is only used in error messages.
func (c *Chain) Parse(r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		include, pat := parseRule(text)
		if pat == "" {
			return fmt.Errorf("%s:%d: empty pattern", name, line)
		}
		if err := c.Add(include, pat); err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

// parseRule splits a trimmed rule line into its action and pattern. A bare
// keyword yields an empty pattern.
func parseRule(text string) (include bool, pat string) {
	head, rest := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		head, rest = text[:i], text[i+1:]
	}
	switch head {
	case "+", "include":
		return true, strings.TrimSpace(rest)
	case "-", "exclude":
		return false, strings.TrimSpace(rest)
	}
	return false, text
}
