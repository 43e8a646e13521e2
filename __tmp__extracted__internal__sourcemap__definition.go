package sourcemap

import (
	"context"
	"regexp"
	"strings"
)

var exportPattern = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function|class|const|let|var)\s+([A-Za-z_$][\w$]*)`)

// FindDefinition performs a best-effort lexical scan of every indexed
// source for a symbol's declaration, matching named function/class/const
// exports (spec.md §4.3: "best-effort lexical scan of indexed sources").
func (c *Cache) FindDefinition(ctx context.Context, symbol, fileFilter string) (Definition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	decl := regexp.MustCompile(`(?m)^\s*(?:export\s+(?:default\s+)?)?(?:async\s+)?(?:function\*?|class|const|let|var)\s+` + regexp.QuoteMeta(symbol) + `\b`)

	for _, key := range c.maps.Keys() {
		v, ok := c.maps.Peek(key)
		if !ok {
			continue
		}
		pm := v.(*parsedMap)
		for file, lines := range pm.fileLine {
			if fileFilter != "" && !strings.Contains(file, fileFilter) {
				continue
			}
			for i, line := range lines {
				if !decl.MatchString(line) {
					continue
				}
				return Definition{
					File:           file,
					Line:           i + 1,
					Column:         strings.Index(line, symbol) + 1,
					Snippet:        snippetWindow(lines, i),
					SiblingExports: siblingExports(lines, symbol),
				}, true
			}
		}
	}
	return Definition{}, false
}

// Symbols lists the named function/class/const/let/var exports declared
// across every indexed source, optionally scoped to files whose path
// contains fileFilter, for the source_get_symbols tool's "what's in this
// file" question. Capped at 50 to bound output size.
func (c *Cache) Symbols(fileFilter string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, key := range c.maps.Keys() {
		v, ok := c.maps.Peek(key)
		if !ok {
			continue
		}
		pm := v.(*parsedMap)
		for file, lines := range pm.fileLine {
			if fileFilter != "" && !strings.Contains(file, fileFilter) {
				continue
			}
			for _, line := range lines {
				m := exportPattern.FindStringSubmatch(line)
				if m == nil || seen[m[1]] {
					continue
				}
				seen[m[1]] = true
				out = append(out, m[1])
				if len(out) >= 50 {
					return out
				}
			}
		}
	}
	return out
}

func snippetWindow(lines []string, idx int) string {
	start := idx - 1
	if start < 0 {
		start = 0
	}
	end := idx + 2
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func siblingExports(lines []string, exclude string) []string {
	var out []string
	for _, line := range lines {
		m := exportPattern.FindStringSubmatch(line)
		if m == nil || m[1] == exclude {
			continue
		}
		out = append(out, m[1])
		if len(out) >= 10 {
			break
		}
	}
	return out
}


