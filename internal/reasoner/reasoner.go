package reasoner

import (
	"context"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// Reasoner classifies and correlates captured errors for one session's
// buffers, using the Source Map Cache to resolve stacks.
type Reasoner struct {
	cfg config.ReasonerConfig
	sm  *sourcemap.Cache
}

// New binds a reasoner to the process-wide Source Map Cache.
func New(cfg config.ReasonerConfig, sm *sourcemap.Cache) *Reasoner {
	return &Reasoner{cfg: cfg, sm: sm}
}

// TraceCause implements spec.md §4.6 end to end: select the exemplar,
// resolve its stack, classify, cluster, correlate, and recommend.
func (r *Reasoner) TraceCause(ctx context.Context, buf *instrumentation.Buffers, fragment string) Cause {
	consoleEvents := buf.Console.Snapshot()
	exemplar, ok := findExemplar(consoleEvents, fragment)
	if !ok {
		return Cause{Found: false}
	}

	resolved := r.sm.ResolveStack(ctx, exemplar.Stack)
	kind, confidence := classify(exemplar.Message)

	clusters := buildClusters(consoleEvents)
	exemplarKey := normalizePattern(exemplar.Message)
	var exemplarCluster Cluster
	for _, c := range clusters {
		if c.PatternKey == exemplarKey {
			exemplarCluster = c
			break
		}
	}

	var related []RelatedError
	for _, c := range clusters {
		if c.PatternKey == exemplarKey {
			continue
		}
		candidateKind, _ := classify(c.ExemplarMessage)
		candidateResolved := r.sm.ResolveStack(ctx, c.ExemplarStack)
		score := similarity(kind, exemplarCluster, c, candidateKind, resolved.Frames, candidateResolved.Frames)
		if score >= r.cfg.Threshold() {
			related = append(related, RelatedError{Cluster: c, Score: score})
		}
	}

	var netContext []NetworkCorrelation
	if kind == KindNetwork {
		netContext = correlateNetwork(buf.Network.Snapshot(), exemplar.Timestamp, r.cfg.Window())
	}

	return Cause{
		Found:           true,
		RootCause:       kind,
		Confidence:      confidence,
		ResolvedStack:   resolved.Frames,
		RelatedErrors:   related,
		Recommendations: recommend(kind, len(netContext) > 0),
		NetworkContext:  netContext,
		CorrelatedIDs:   exemplarCluster.CorrelatedIDs,
	}
}

// GetSimilar clusters all console events and returns the single cluster
// whose pattern matches fragment's normalized form, if any (spec.md §4.6
// step 4, surfaced directly for the error_get_similar tool).
func (r *Reasoner) GetSimilar(buf *instrumentation.Buffers, fragment string) (Cluster, bool) {
	clusters := buildClusters(buf.Console.Snapshot())
	key := normalizePattern(fragment)
	for _, c := range clusters {
		if c.PatternKey == key {
			return c, true
		}
	}
	return Cluster{}, false
}

// GetContext returns the console and network events within the
// correlation window of the newest event matching fragment, for the
// error_get_context tool's "what else was happening" question.
func (r *Reasoner) GetContext(buf *instrumentation.Buffers, fragment string) ([]instrumentation.ConsoleEvent, []instrumentation.NetworkEvent, bool) {
	consoleEvents := buf.Console.Snapshot()
	exemplar, ok := findExemplar(consoleEvents, fragment)
	if !ok {
		return nil, nil, false
	}

	window := r.cfg.Window()
	var console []instrumentation.ConsoleEvent
	for _, ev := range consoleEvents {
		if withinWindow(ev.Timestamp, exemplar.Timestamp, window) {
			console = append(console, ev)
		}
	}

	var network []instrumentation.NetworkEvent
	for _, ev := range buf.Network.Snapshot() {
		ts := ev.StartedAt
		if !ev.EndedAt.IsZero() {
			ts = ev.EndedAt
		}
		if withinWindow(ts, exemplar.Timestamp, window) {
			network = append(network, ev)
		}
	}

	return console, network, true
}

// ResolveStack is a thin pass-through to the Source Map Cache, exposed here
// so the error_resolve_stack tool has a single reasoner-shaped entry point
// alongside the rest of the error_* tool family.
func (r *Reasoner) ResolveStack(ctx context.Context, stackText string) sourcemap.ResolvedStack {
	return r.sm.ResolveStack(ctx, stackText)
}

func withinWindow(t, center time.Time, window time.Duration) bool {
	diff := center.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
