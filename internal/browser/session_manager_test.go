package browser

import (
	"context"
	"testing"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
)

func TestSessionMetadata(t *testing.T) {
	now := time.Now()
	s := Session{
		ID:         "sess-1",
		TargetID:   "target-1",
		URL:        "https://example.com",
		Title:      "Example",
		Status:     "active",
		CreatedAt:  now,
		LastActive: now,
	}
	if s.ID != "sess-1" || s.Status != "active" {
		t.Fatalf("unexpected session metadata: %+v", s)
	}
}

func TestNewSessionManager(t *testing.T) {
	cfg := config.BrowserConfig{MaxConcurrentSessions: 4}
	m := NewSessionManager(cfg, nil, false)
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if cap(m.sem) != 4 {
		t.Errorf("expected pool capacity 4, got %d", cap(m.sem))
	}
}

func TestSessionManagerControlURL(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if m.ControlURL() != "" {
		t.Error("expected empty control URL before Start")
	}
}

func TestSessionManagerIsConnected(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if m.IsConnected() {
		t.Error("expected IsConnected false before Start")
	}
}

func TestSessionManagerList(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if got := m.List(); len(got) != 0 {
		t.Errorf("expected empty session list, got %d", len(got))
	}
}

func TestSessionManagerGetSessionNotFound(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if _, ok := m.GetSession("missing"); ok {
		t.Error("expected ok=false for missing session")
	}
}

func TestSessionManagerPageNotFound(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if _, ok := m.Page("missing"); ok {
		t.Error("expected ok=false for missing page")
	}
}

func TestSessionManagerUpdateMetadataNoSession(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	// Must not panic when the session doesn't exist.
	m.UpdateMetadata("missing", func(s Session) Session {
		t.Error("updater should not run for unknown session")
		return s
	})
}

func TestSessionManagerCreateSessionNoBrowser(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 1}, nil, false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := m.CreateSession(ctx, "https://example.com"); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestSessionManagerAttachNoBrowser(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 1}, nil, false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := m.Attach(ctx, "target-1"); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestSessionManagerShutdownNoSessions(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{}, nil, false)
	if err := m.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestSessionStatusValues(t *testing.T) {
	valid := map[string]bool{"active": true, "attached": true, "forked": true, "detached": true}
	for status := range valid {
		s := Session{Status: status}
		if !valid[s.Status] {
			t.Errorf("unexpected status: %s", status)
		}
	}
}

func TestSessionManagerConcurrentAccess(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 4}, nil, false)
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			_ = m.List()
			m.Release("nonexistent")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestSessionManagerConfigTimeouts(t *testing.T) {
	cfg := config.BrowserConfig{
		DefaultNavigationTimeout: "5s",
		DefaultSettleInterval:    "1s",
	}
	if cfg.NavigationTimeout() != 5*time.Second {
		t.Errorf("expected 5s navigation timeout, got %v", cfg.NavigationTimeout())
	}
	if cfg.SettleInterval() != time.Second {
		t.Errorf("expected 1s settle interval, got %v", cfg.SettleInterval())
	}
}

func TestSessionManagerConfigInvalidTimeouts(t *testing.T) {
	cfg := config.BrowserConfig{DefaultNavigationTimeout: "not-a-duration"}
	if cfg.NavigationTimeout() != 30*time.Second {
		t.Errorf("expected fallback to 30s, got %v", cfg.NavigationTimeout())
	}
}

func TestSessionManagerConfigViewport(t *testing.T) {
	cfg := config.BrowserConfig{ViewportWidth: 1024, ViewportHeight: 768}
	if cfg.GetViewportWidth() != 1024 || cfg.GetViewportHeight() != 768 {
		t.Errorf("unexpected viewport: %dx%d", cfg.GetViewportWidth(), cfg.GetViewportHeight())
	}
}

func TestAcquireSlotBlocksWhenFull(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 1, AcquireQueueTimeout: "50ms"}, nil, false)
	m.sem <- struct{}{} // occupy the only slot

	ctx := context.Background()
	if err := m.acquireSlot(ctx); err != ErrResourceExhausted {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
}

func TestAcquireSlotRespectsContextCancellation(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 1, AcquireQueueTimeout: "10s"}, nil, false)
	m.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.acquireSlot(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReleaseSlotIsIdempotent(t *testing.T) {
	m := NewSessionManager(config.BrowserConfig{MaxConcurrentSessions: 1}, nil, false)
	m.releaseSlot() // releasing an empty pool must not panic or block
	m.sem <- struct{}{}
	m.releaseSlot()
	m.releaseSlot()
}
