package filter

import (
	"regexp"
	"strings"
)

// pattern is a compiled rsync-style glob.
//
//	*        any run of characters except /
//	**       any run of characters including /
//	?        one character except /
//	[...]    character class, [!...] negated
//	trailing /   matches directories only
//	leading / or any inner /   anchors to the copy root
//
// An unanchored pattern matches the basename or any trailing path suffix.
type pattern struct {
	source  string
	re      *regexp.Regexp
	dirOnly bool
}

func compile(src string) (*pattern, error) {
	p := &pattern{source: src}
	glob := src

	if trimmed, ok := strings.CutSuffix(glob, "/"); ok {
		p.dirOnly = true
		glob = trimmed
	}
	anchored := strings.Contains(glob, "/")
	glob = strings.TrimPrefix(glob, "/")

	prefix := "(^|/)"
	if anchored {
		prefix = "^"
	}
	re, err := regexp.Compile(prefix + translate(glob) + "$")
	if err != nil {
		return nil, err
	}
	p.re = re
	return p, nil
}

func (p *pattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.re.MatchString(relPath)
}

// translate turns a glob body into an unanchored regular expression.
func translate(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); {
		switch c := glob[i]; c {
		case '*':
			switch {
			case strings.HasPrefix(glob[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 3
			case strings.HasPrefix(glob[i:], "**"):
				b.WriteString(".*")
				i += 2
			default:
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			if class, n := charClass(glob[i:]); n > 0 {
				b.WriteString(class)
				i += n
				continue
			}
			b.WriteString(`\[`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

// charClass parses a bracket expression at the start of s and returns its
// regexp form and length, or n == 0 if the bracket is never closed.
func charClass(s string) (string, int) {
	j := 1
	if j < len(s) && s[j] == '!' {
		j++
	}
	if j < len(s) && s[j] == ']' {
		j++
	}
	end := strings.IndexByte(s[j:], ']')
	if end < 0 {
		return "", 0
	}
	end += j

	body := s[1:end]
	if rest, ok := strings.CutPrefix(body, "!"); ok {
		body = "^" + rest
	}
	return "[" + strings.ReplaceAll(body, `\`, `\\`) + "]", end + 1
}
