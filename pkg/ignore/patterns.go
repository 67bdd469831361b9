// File: pkg/ignore/patterns.go
package ignore

import (
	"fmt"
	"regexp"
	"strings"
)

// Precompiled regular expressions used in pattern translation.
var (
	doubleStarMiddle   = regexp.MustCompile(`/\*\*/`)
	doubleStarTrailing = regexp.MustCompile(`/\*\*$`)
	doubleStarLeading  = regexp.MustCompile(`^\*\*/`)
)

// parseLine turns one gitignore-style line into a Pattern. It returns nil
// for blank lines and comments.
func parseLine(line string) (*Pattern, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	p := &Pattern{Line: line}
	if strings.HasPrefix(trimmed, "!") {
		p.Negate = true
		trimmed = trimmed[1:]
	} else if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}
	if strings.HasSuffix(trimmed, "/") {
		p.DirOnly = true
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	anchored := strings.HasPrefix(trimmed, "/") || strings.Contains(strings.TrimPrefix(trimmed, "**/"), "/")
	trimmed = strings.TrimPrefix(trimmed, "/")

	expr := translate(trimmed)
	if anchored {
		expr = "^" + expr + "(/.*)?$"
	} else {
		expr = "^(.*/)?" + expr + "(/.*)?$"
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", line, err)
	}
	p.Regexp = re
	return p, nil
}

// translate converts glob syntax into an unanchored regular expression.
// '**' spans directories, '*' and '?' stay within one path segment.
func translate(glob string) string {
	const (
		middle   = "\x00M"
		trailing = "\x00T"
		leading  = "\x00L"
	)
	glob = doubleStarMiddle.ReplaceAllString(glob, middle)
	glob = doubleStarTrailing.ReplaceAllString(glob, trailing)
	glob = doubleStarLeading.ReplaceAllString(glob, leading)

	expr := regexp.QuoteMeta(glob)
	expr = strings.ReplaceAll(expr, `\*\*`, `.*`)
	expr = strings.ReplaceAll(expr, `\*`, `[^/]*`)
	expr = strings.ReplaceAll(expr, `\?`, `[^/]`)

	expr = strings.ReplaceAll(expr, middle, `(/|/.+/)`)
	expr = strings.ReplaceAll(expr, trailing, `(/.*)?`)
	expr = strings.ReplaceAll(expr, leading, `(.*/)?`)
	return expr
}
