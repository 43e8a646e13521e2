package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
)

// TestLiveBrowserSessionManager exercises navigation, instrumentation
// attachment, and forking against a real browser instance.
func TestLiveBrowserSessionManager(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping live browser tests (SKIP_LIVE_TESTS set)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.BrowserConfig{
		Headless:              boolPtr(true),
		MaxConcurrentSessions: 4,
	}
	il := instrumentation.NewManager(config.InstrumentationConfig{
		EventBufferCapacity: 200,
		MaxBodyBytes:        65536,
	})

	manager := NewSessionManager(cfg, il, false)
	if err := manager.Start(ctx); err != nil {
		t.Skipf("browser start failed: %v", err)
	}
	defer manager.Shutdown(ctx)

	sess, err := manager.CreateSession(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	defer manager.Release(sess.ID)

	buf, ok := il.Get(sess.ID)
	if !ok {
		t.Fatal("expected instrumentation buffers for new session")
	}
	if buf.Network.Len() == 0 {
		t.Error("expected at least one network event for the document load")
	}

	fork, err := manager.ForkSession(ctx, sess.ID, "https://example.com")
	if err != nil {
		t.Fatalf("ForkSession failed: %v", err)
	}
	defer manager.Release(fork.ID)
	if fork.Status != "forked" {
		t.Errorf("expected forked status, got %s", fork.Status)
	}
}

// TestLiveBrowserSessionManagerAttach verifies attaching to an
// already-created target by TargetID.
func TestLiveBrowserSessionManagerAttach(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping live browser tests (SKIP_LIVE_TESTS set)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.BrowserConfig{Headless: boolPtr(true), MaxConcurrentSessions: 4}
	manager := NewSessionManager(cfg, nil, false)
	if err := manager.Start(ctx); err != nil {
		t.Skipf("browser start failed: %v", err)
	}
	defer manager.Shutdown(ctx)

	created, err := manager.CreateSession(ctx, "about:blank")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	defer manager.Release(created.ID)

	attached, err := manager.Attach(ctx, created.TargetID)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer manager.Release(attached.ID)
	if attached.Status != "attached" {
		t.Errorf("expected attached status, got %s", attached.Status)
	}
}


