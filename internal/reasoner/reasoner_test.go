package reasoner

import (
	"context"
	"testing"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

func newTestReasoner(t *testing.T) *Reasoner {
	t.Helper()
	sm, err := sourcemap.New(config.SourceMapConfig{})
	if err != nil {
		t.Fatalf("sourcemap.New: %v", err)
	}
	cfg := config.ReasonerConfig{CorrelationWindow: "2s", MinSimilarityScore: 0.3}
	return New(cfg, sm)
}

func TestTraceCauseNotFound(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)
	buf.Console.Append(mkConsole("Disk full", time.Now()))

	cause := r.TraceCause(context.Background(), buf, "nonexistent fragment")
	if cause.Found {
		t.Fatal("expected Found=false")
	}
}

func TestTraceCauseNetworkClassification(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)

	base := time.Now()
	buf.Console.Append(mkConsole("TypeError: Failed to fetch", base.Add(1000*time.Millisecond)))
	buf.Network.Append(instrumentation.NetworkEvent{
		URL:       "https://example.com/api/x",
		Method:    "GET",
		Status:    0,
		StartedAt: base.Add(950 * time.Millisecond),
	})

	cause := r.TraceCause(context.Background(), buf, "Failed to fetch")
	if !cause.Found {
		t.Fatal("expected Found=true")
	}
	if cause.RootCause != KindNetwork {
		t.Fatalf("expected Network classification, got %s", cause.RootCause)
	}
	if cause.Confidence != High {
		t.Fatalf("expected high confidence, got %s", cause.Confidence)
	}
	if len(cause.RelatedErrors) != 0 {
		t.Fatalf("expected no related errors, got %d", len(cause.RelatedErrors))
	}
	if len(cause.NetworkContext) == 0 {
		t.Fatal("expected correlated network context")
	}
	if !cause.NetworkContext[0].Failed {
		t.Fatal("expected the correlated request to be marked failed")
	}
	if len(cause.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
}

func TestGetSimilarClustersByPattern(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)
	base := time.Now()
	buf.Console.Append(mkConsole("User ID 12345 not found", base))
	buf.Console.Append(mkConsole("User ID 67890 not found", base.Add(time.Second)))
	buf.Console.Append(mkConsole("User ID 11111 not found", base.Add(2*time.Second)))
	buf.Console.Append(mkConsole("Disk full", base.Add(3*time.Second)))

	cluster, ok := r.GetSimilar(buf, "User ID 12345 not found")
	if !ok {
		t.Fatal("expected a matching cluster")
	}
	if cluster.Count != 3 {
		t.Fatalf("expected count 3, got %d", cluster.Count)
	}
}

func TestGetSimilarNoMatch(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)
	buf.Console.Append(mkConsole("Disk full", time.Now()))

	_, ok := r.GetSimilar(buf, "nonexistent pattern")
	if ok {
		t.Fatal("expected no matching cluster")
	}
}

func TestGetContextReturnsWindowedEvents(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)
	base := time.Now()
	buf.Console.Append(mkConsole("TypeError: Failed to fetch", base))
	buf.Console.Append(mkConsole("unrelated but within window", base.Add(time.Second)))
	buf.Console.Append(mkConsole("far away", base.Add(time.Hour)))

	console, _, ok := r.GetContext(buf, "Failed to fetch")
	if !ok {
		t.Fatal("expected context to be found")
	}
	if len(console) != 2 {
		t.Fatalf("expected 2 console events within window, got %d", len(console))
	}
}

func TestResolveStackPassthrough(t *testing.T) {
	r := newTestReasoner(t)
	stack := r.ResolveStack(context.Background(), "at foo (bundle.js:1:1)")
	if stack.TotalCount != 1 {
		t.Fatalf("expected 1 frame, got %d", stack.TotalCount)
	}
}

func TestTraceCauseDeterministic(t *testing.T) {
	r := newTestReasoner(t)
	buf := instrumentation.NewBuffers(10)
	base := time.Now()
	buf.Console.Append(mkConsole("ReferenceError: foo is not defined", base))

	a := r.TraceCause(context.Background(), buf, "foo is not defined")
	b := r.TraceCause(context.Background(), buf, "foo is not defined")
	if a.RootCause != b.RootCause || a.Confidence != b.Confidence {
		t.Fatal("expected identical output for identical inputs")
	}
}
