package reasoner

import (
	"sort"
	"strings"

	"github.com/frontendintel/fie-mcp-server/internal/correlation"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
)

// buildClusters groups console events by normalized pattern key, computing
// count and first/last-seen timestamps per spec.md §4.6 step 4. Clusters
// are returned sorted newest-exemplar-first for deterministic output.
func buildClusters(events []instrumentation.ConsoleEvent) []Cluster {
	byKey := make(map[string]*Cluster)
	order := make([]string, 0)

	for _, ev := range events {
		key := normalizePattern(ev.Message)
		c, ok := byKey[key]
		ms := ev.Timestamp.UnixMilli()
		if !ok {
			c = &Cluster{
				PatternKey:      key,
				Count:           0,
				FirstSeenMs:     ms,
				LastSeenMs:      ms,
				ExemplarMessage: ev.Message,
				ExemplarStack:   ev.Stack,
			}
			byKey[key] = c
			order = append(order, key)
		}
		c.Count++
		if ms < c.FirstSeenMs {
			c.FirstSeenMs = ms
		}
		if ms >= c.LastSeenMs {
			c.LastSeenMs = ms
			c.ExemplarMessage = ev.Message
			c.ExemplarStack = ev.Stack
			c.CorrelatedIDs = correlatedIDStrings(ev.Message)
		}
	}

	out := make([]Cluster, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastSeenMs > out[j].LastSeenMs })
	return out
}

// findExemplar returns the newest console event whose message contains
// fragment, and false if none matches (spec.md §4.6 step 1).
func findExemplar(events []instrumentation.ConsoleEvent, fragment string) (instrumentation.ConsoleEvent, bool) {
	var best instrumentation.ConsoleEvent
	found := false
	for _, ev := range events {
		if !strings.Contains(strings.ToLower(ev.Message), strings.ToLower(fragment)) {
			continue
		}
		if !found || ev.Timestamp.After(best.Timestamp) {
			best = ev
			found = true
		}
	}
	return best, found
}

// correlatedIDStrings flattens correlation.Key values into "type:value"
// tokens for the cluster's correlatedIds field.
func correlatedIDStrings(message string) []string {
	keys := correlation.FromMessage(message)
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.Type+":"+k.Value)
	}
	return out
}
