package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
)

// TestIntegrationSessionManager exercises the pool against a real browser.
// Set SKIP_LIVE_TESTS="" to run this with a live Chrome instance.
func TestIntegrationSessionManager(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping integration tests (SKIP_LIVE_TESTS set)")
	}

	cfg := config.BrowserConfig{
		Headless:              boolPtr(true),
		MaxConcurrentSessions: 2,
	}
	il := instrumentation.NewManager(config.InstrumentationConfig{EventBufferCapacity: 100})

	manager := NewSessionManager(cfg, il, false)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		t.Skipf("browser start failed (Chrome not available or not configured): %v", err)
	}
	if !manager.IsConnected() {
		t.Fatal("expected IsConnected to return true after Start")
	}
	if manager.ControlURL() == "" {
		t.Fatal("expected non-empty control URL after Start")
	}
	defer manager.Shutdown(ctx)

	sess, err := manager.CreateSession(ctx, "about:blank")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected non-empty session ID")
	}

	if _, ok := manager.Page(sess.ID); !ok {
		t.Fatal("expected page to be tracked after CreateSession")
	}

	if buf, ok := il.Get(sess.ID); !ok || buf == nil {
		t.Fatal("expected instrumentation buffers to be attached")
	}

	manager.Release(sess.ID)
	if _, ok := manager.GetSession(sess.ID); ok {
		t.Error("expected session to be gone after Release")
	}
}

// TestIntegrationSessionManagerResourceExhausted verifies the pool cap is
// enforced against a live browser.
func TestIntegrationSessionManagerResourceExhausted(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping integration tests (SKIP_LIVE_TESTS set)")
	}

	cfg := config.BrowserConfig{
		Headless:              boolPtr(true),
		MaxConcurrentSessions: 1,
		AcquireQueueTimeout:   "500ms",
	}
	manager := NewSessionManager(cfg, nil, false)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		t.Skipf("browser start failed: %v", err)
	}
	defer manager.Shutdown(ctx)

	first, err := manager.CreateSession(ctx, "about:blank")
	if err != nil {
		t.Fatalf("first CreateSession failed: %v", err)
	}
	defer manager.Release(first.ID)

	if _, err := manager.CreateSession(ctx, "about:blank"); err != ErrResourceExhausted {
		t.Errorf("expected ErrResourceExhausted with pool full, got %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }
