package reasoner

import (
	"regexp"
	"strings"
)

// Compiled once, matched in priority order: hex literals before bare
// numbers so "0x1f" doesn't get its digits replaced first.
var (
	hexPattern    = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
	dquotePattern = regexp.MustCompile(`"[^"]*"`)
	squotePattern = regexp.MustCompile(`'[^']*'`)
)

// normalizePattern derives a clustering key from a raw console message:
// numbers collapse to N, quoted strings to 'S', hex literals to 0xH, and
// any trailing stack trace text is dropped first.
func normalizePattern(message string) string {
	msg := stripStack(message)
	msg = hexPattern.ReplaceAllString(msg, "0xH")
	msg = numberPattern.ReplaceAllString(msg, "N")
	msg = dquotePattern.ReplaceAllString(msg, `"S"`)
	msg = squotePattern.ReplaceAllString(msg, "'S'")
	return strings.TrimSpace(msg)
}

// stripStack drops everything from the first newline onward, which removes
// a V8 stack trace ("\n    at ...") appended to an Error's message.
func stripStack(message string) string {
	if idx := strings.Index(message, "\n"); idx != -1 {
		return message[:idx]
	}
	return message
}

// normalizeWords lowercases and splits a message into a set of alphanumeric
// tokens for word-overlap scoring, ignoring the pattern-key punctuation
// normalization already applied upstream.
func normalizeWords(message string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			set[f] = struct{}{}
		}
	}
	return set
}
