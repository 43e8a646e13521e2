package sourcemap

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Stack-frame patterns for the three engines spec.md §4.3 names, compiled
// once as package vars and matched in priority order, following the
// teacher's internal/correlation regexp-table idiom.
var (
	v8FramePattern = regexp.MustCompile(`^\s*at\s+(?:(.+?)\s+\()?(.+?):(\d+):(\d+)\)?\s*$`)

	spiderMonkeyFramePattern = regexp.MustCompile(`^\s*([^@]*)@(.+?):(\d+):(\d+)\s*$`)

	jscFramePattern = regexp.MustCompile(`^\s*([^@]*)@\[native code\]|^\s*([^@]*)@(.+?):(\d+):(\d+)\s*$`)
)

// ResolveStack resolves every frame of an arbitrary stack string, accepting
// V8, SpiderMonkey, or JSC formats. Unmatched lines pass through unresolved
// and never abort the call (spec.md §4.3).
func (c *Cache) ResolveStack(ctx context.Context, stackText string) ResolvedStack {
	lines := strings.Split(strings.TrimSpace(stackText), "\n")
	out := ResolvedStack{Frames: make([]StackFrame, 0, len(lines))}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fn, url, lineNo, colNo, ok := parseStackLine(line)
		frame := StackFrame{Raw: line, Function: fn}
		if !ok {
			frame.Location = ResolvedLocation{Reason: "unrecognized stack frame format"}
			out.Frames = append(out.Frames, frame)
			continue
		}

		frame.Location = c.Resolve(ctx, url, lineNo, colNo)
		if frame.Location.Resolved {
			out.ResolvedCount++
		}
		out.Frames = append(out.Frames, frame)
	}

	out.TotalCount = len(out.Frames)
	return out
}

// parseStackLine tries each engine's pattern in priority order (V8 first,
// as it's by far the most common runtime this engine targets).
func parseStackLine(line string) (fn, url string, lineNo, colNo int, ok bool) {
	if m := v8FramePattern.FindStringSubmatch(line); m != nil {
		return m[1], m[2], atoiOr(m[3]), atoiOr(m[4]), true
	}
	if m := spiderMonkeyFramePattern.FindStringSubmatch(line); m != nil {
		return m[1], m[2], atoiOr(m[3]), atoiOr(m[4]), true
	}
	if m := jscFramePattern.FindStringSubmatch(line); m != nil {
		if m[3] != "" {
			return m[2], m[3], atoiOr(m[4]), atoiOr(m[5]), true
		}
	}
	return "", "", 0, 0, false
}

func atoiOr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}


