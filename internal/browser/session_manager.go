// Package browser owns the headless-browser pool and scoped page
// acquisition: the Browser Session Manager.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Sentinel errors mapped to dispatcher.Failure kinds by the MCP layer.
var (
	ErrResourceExhausted = errors.New("browser: session pool exhausted")
	ErrSessionTerminated = errors.New("browser: session terminated")
	ErrNotConnected      = errors.New("browser: not connected")
)

// Session describes the public metadata for a tracked browser context.
type Session struct {
	ID         string    `json:"id"`
	TargetID   string    `json:"target_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type sessionRecord struct {
	meta      Session
	page      *rod.Page
	stopEvent func() // stops instrumentation collectors (e.g. coverage)
}

// SessionManager owns the detached Chrome instance, enforces the bounded
// concurrent-session pool (spec.md §4.1, §5), and tracks active sessions.
type SessionManager struct {
	cfg   config.BrowserConfig
	il    *instrumentation.Manager
	coverage bool

	mu         sync.RWMutex
	browser    *rod.Browser
	sessions   map[string]*sessionRecord
	controlURL string

	sem chan struct{} // bounded concurrency semaphore, capacity M
}

// NewSessionManager wires a pool bounded to cfg.MaxSessions() and an
// instrumentation manager that owns per-session Event Buffers.
func NewSessionManager(cfg config.BrowserConfig, il *instrumentation.Manager, enableCoverage bool) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		il:       il,
		coverage: enableCoverage,
		sessions: make(map[string]*sessionRecord),
		sem:      make(chan struct{}, cfg.MaxSessions()),
	}
}

// Start connects to an existing Chrome or launches a new one using Rod's launcher.
func (m *SessionManager) Start(ctx context.Context) error {
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil // Browser is healthy, reuse it
		}
		log.Printf("stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.mu.Lock()
		m.sessions = make(map[string]*sessionRecord)
		// The crashed browser took every live session's page with it; reset
		// the pool semaphore too, or their slots would stay held forever.
		m.sem = make(chan struct{}, m.cfg.MaxSessions())
		m.mu.Unlock()
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" && len(m.cfg.Launch) > 0 {
		bin := m.cfg.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
		if len(m.cfg.Launch) > 1 {
			for _, rawFlag := range m.cfg.Launch[1:] {
				flagStr := strings.TrimLeft(rawFlag, "-")
				name, val, hasVal := strings.Cut(flagStr, "=")
				if hasVal {
					launch = launch.Set(flags.Flag(name), val)
				} else {
					launch = launch.Set(flags.Flag(name))
				}
			}
		}
		url, err := launch.Launch()
		if err != nil {
			fallback := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
			if alt, altErr := fallback.Launch(); altErr == nil {
				controlURL = alt
			} else {
				return fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
			}
		} else {
			controlURL = url
		}
	}

	if controlURL == "" {
		return errors.New("no debugger_url or launch command provided")
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	log.Printf("browser connected at %s", controlURL)
	return nil
}

// HealthCheck verifies the browser process and restarts it on crash
// (spec.md §4.1's healthCheck operation).
func (m *SessionManager) HealthCheck(ctx context.Context) error {
	if m.browser == nil {
		return m.Start(ctx)
	}
	if _, err := m.browser.Version(); err != nil {
		return m.Start(ctx)
	}
	return nil
}

// ControlURL returns the WebSocket debugger URL for the connected browser.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected returns whether the browser is currently connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes tracked pages and the underlying browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range m.sessions {
		m.releaseLocked(id, record)
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	log.Printf("browser shutdown complete")
	return err
}

// releaseLocked closes a page, stops its collectors, drops its Event Buffer,
// and frees its pool slot. Caller must hold m.mu.
func (m *SessionManager) releaseLocked(id string, record *sessionRecord) {
	if record.page != nil {
		_ = record.page.Close()
	}
	if record.stopEvent != nil {
		record.stopEvent()
	}
	if m.il != nil {
		m.il.Remove(id)
	}
	delete(m.sessions, id)
	if record.meta.Status != "detached" {
		m.releaseSlot()
	}
}

// List returns lightweight metadata for all known sessions.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Session, 0, len(m.sessions))
	for _, record := range m.sessions {
		results = append(results, record.meta)
	}
	return results
}

// acquireSlot blocks until a pool slot is free, the acquire timeout elapses
// (ResourceExhausted), or ctx is cancelled.
func (m *SessionManager) acquireSlot(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.cfg.AcquireTimeout()):
		return ErrResourceExhausted
	}
}

func (m *SessionManager) releaseSlot() {
	select {
	case <-m.sem:
	default:
	}
}

// CreateSession acquires a pool slot, opens an isolated (incognito) page,
// attaches instrumentation before navigation, navigates with the configured
// timeout, and waits the settle interval before returning (spec.md §4.1/§4.2).
func (m *SessionManager) CreateSession(ctx context.Context, url string) (*Session, error) {
	if m.browser == nil {
		return nil, ErrNotConnected
	}

	if err := m.acquireSlot(ctx); err != nil {
		return nil, err
	}

	incognito, err := m.browser.Incognito()
	if err != nil {
		m.releaseSlot()
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		m.releaseSlot()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		log.Printf("warning: failed to set viewport: %v", err)
	}

	meta := Session{
		ID:         uuid.NewString(),
		TargetID:   string(page.TargetID),
		URL:        url,
		Status:     "active",
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}

	var stopEvent func()
	if m.il != nil {
		// Attach before navigation so the first document load is observed.
		stopEvent = m.il.Attach(ctx, meta.ID, page, m.coverage)
	}

	m.mu.Lock()
	m.sessions[meta.ID] = &sessionRecord{meta: meta, page: page, stopEvent: stopEvent}
	m.mu.Unlock()

	if err := page.Context(ctx).Timeout(m.cfg.NavigationTimeout()).Navigate(url); err != nil {
		m.Release(meta.ID)
		return nil, fmt.Errorf("%w: navigate %s: %v", ErrSessionTerminated, url, err)
	}
	_ = page.Context(ctx).Timeout(m.cfg.NavigationTimeout()).WaitLoad()

	select {
	case <-time.After(m.cfg.SettleInterval()):
	case <-ctx.Done():
	}

	return &meta, nil
}

// Attach attempts to bind to an existing target by TargetID. Attached
// sessions still count against the pool while live.
func (m *SessionManager) Attach(ctx context.Context, targetID string) (*Session, error) {
	if m.browser == nil {
		return nil, ErrNotConnected
	}
	if err := m.acquireSlot(ctx); err != nil {
		return nil, err
	}

	page, err := m.browser.PageFromTarget(proto.TargetTargetID(targetID))
	if err != nil {
		m.releaseSlot()
		return nil, fmt.Errorf("attach to target %s: %w", targetID, err)
	}

	meta := Session{
		ID:         uuid.NewString(),
		TargetID:   targetID,
		Status:     "attached",
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}

	var stopEvent func()
	if m.il != nil {
		stopEvent = m.il.Attach(ctx, meta.ID, page, m.coverage)
	}

	m.mu.Lock()
	m.sessions[meta.ID] = &sessionRecord{meta: meta, page: page, stopEvent: stopEvent}
	m.mu.Unlock()

	return &meta, nil
}

// Release closes a session's page, stops its collectors, and frees its pool
// slot. Safe to call more than once.
func (m *SessionManager) Release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	m.releaseLocked(sessionID, record)
}

// Page returns the underlying Rod page for a session when present.
func (m *SessionManager) Page(sessionID string) (*rod.Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return rec.page, true
}

// UpdateMetadata allows tools to refresh metadata (e.g., URL/title after navigation).
func (m *SessionManager) UpdateMetadata(sessionID string, updater func(Session) Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	rec.meta = updater(rec.meta)
}

// GetSession returns the current session metadata when available.
func (m *SessionManager) GetSession(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return rec.meta, true
}

