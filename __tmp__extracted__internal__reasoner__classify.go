package reasoner

import "regexp"

// Priority-ordered classification rules; the first pattern that matches
// wins (spec.md §4.6's rule table).
var classificationRules = []struct {
	pattern    *regexp.Regexp
	kind       string
	confidence string
}{
	{regexp.MustCompile(`(?i)is not a function|undefined|null`), KindTypeError, High},
	{regexp.MustCompile(`(?i)is not defined`), KindReferenceError, High},
	{regexp.MustCompile(`(?i)fetch|network|xhr|cors`), KindNetwork, High},
	{regexp.MustCompile(`(?i)render|component`), KindRendering, Medium},
}

// classify assigns a root-cause kind and confidence to a message, defaulting
// to Generic/Low when no rule matches.
func classify(message string) (kind, confidence string) {
	for _, rule := range classificationRules {
		if rule.pattern.MatchString(message) {
			return rule.kind, rule.confidence
		}
	}
	return KindGeneric, Low
}

// recommend maps a classification plus whether network correlation found
// anything to a short, deterministic action list (spec.md §4.6 step 6).
func recommend(kind string, hasNetworkContext bool) []string {
	switch kind {
	case KindTypeError:
		return []string{
			"Check for null/undefined before property access or calls",
			"Verify the referenced function or property exists on the object at runtime",
			"Add a guard clause or optional chaining near the resolved source location",
		}
	case KindReferenceError:
		return []string{
			"Confirm the identifier is declared and in scope at the call site",
			"Check for a missing import or a typo in the variable name",
		}
	case KindNetwork:
		recs := []string{
			"Check the endpoint's availability and CORS configuration",
			"Verify the request URL and method match the API contract",
		}
		if hasNetworkContext {
			recs = append(recs, "Inspect the correlated failing request's response status and headers")
		} else {
			recs = append(recs, "No correlated network failure found within the correlation window; check for a client-side abort")
		}
		return recs
	case KindRendering:
		return []string{
			"Check the component's render method for conditional logic throwing on edge-case props",
			"Verify required props are passed by all call sites",
		}
	default:
		return []string{
			"Review the resolved source location and surrounding logic",
		}
	}
}


