package reasoner

import (
	"sort"
	"strconv"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// similarity computes a 0-1 score between the exemplar cluster and a
// candidate cluster per spec.md §4.6 step 5: error-kind match (+0.3),
// weighted word overlap (+0.5 max), shared resolved stack frames (+0.2 max).
func similarity(exemplarKind string, exemplar Cluster, candidate Cluster, candidateKind string, exemplarFrames, candidateFrames []sourcemap.StackFrame) float64 {
	score := 0.0
	if exemplarKind == candidateKind {
		score += 0.3
	}
	score += 0.5 * wordOverlap(exemplar.ExemplarMessage, candidate.ExemplarMessage)
	score += 0.2 * frameOverlap(exemplarFrames, candidateFrames)
	if score > 1 {
		score = 1
	}
	return score
}

// wordOverlap is the Jaccard similarity of the two messages' normalized
// word sets.
func wordOverlap(a, b string) float64 {
	wa := normalizeWords(a)
	wb := normalizeWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	union := len(wa) + len(wb) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// frameOverlap returns the fraction of resolved original-file:line frames
// shared between two stacks, scaled 0-1.
func frameOverlap(a, b []sourcemap.StackFrame) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, f := range a {
		if f.Location.Resolved {
			setA[frameKey(f)] = struct{}{}
		}
	}
	if len(setA) == 0 {
		return 0
	}
	shared := 0
	for _, f := range b {
		if !f.Location.Resolved {
			continue
		}
		if _, ok := setA[frameKey(f)]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(setA))
}

func frameKey(f sourcemap.StackFrame) string {
	return f.Location.OriginalFile + ":" + strconv.Itoa(f.Location.OriginalLine)
}

// correlateNetwork finds network events within window of exemplarTime,
// preferring failed requests first, for Network-classified errors
// (spec.md §4.6 step 3's "correlate with IL network events within ±2s").
func correlateNetwork(events []instrumentation.NetworkEvent, exemplarTime time.Time, window time.Duration) []NetworkCorrelation {
	var out []NetworkCorrelation
	for _, ev := range events {
		ts := ev.StartedAt
		if !ev.EndedAt.IsZero() {
			ts = ev.EndedAt
		}
		diff := exemplarTime.Sub(ts)
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			continue
		}
		failed := ev.Status == 0 || ev.Status >= 400
		out = append(out, NetworkCorrelation{
			URL:      ev.URL,
			Method:   ev.Method,
			Status:   ev.Status,
			Failed:   failed,
			OffsetMs: exemplarTime.Sub(ts).Milliseconds(),
		})
	}

	// Failed requests first, then by closest offset.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Failed != b.Failed {
			return a.Failed
		}
		return absMs(a.OffsetMs) < absMs(b.OffsetMs)
	})
	return out
}

func absMs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
