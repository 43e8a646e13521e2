package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Name != "fie-mcp" {
		t.Errorf("expected server name 'fie-mcp', got %q", cfg.Server.Name)
	}
	if cfg.Server.Version != "0.1.0" {
		t.Errorf("expected server version '0.1.0', got %q", cfg.Server.Version)
	}
	if cfg.Server.LogFile != "fie-mcp.log" {
		t.Errorf("expected log file 'fie-mcp.log', got %q", cfg.Server.LogFile)
	}

	// Browser defaults
	if !cfg.Browser.AutoStart {
		t.Error("expected AutoStart to be true")
	}
	if cfg.Browser.DefaultNavigationTimeout != "30s" {
		t.Errorf("expected navigation timeout '30s', got %q", cfg.Browser.DefaultNavigationTimeout)
	}
	if cfg.Browser.DefaultSettleInterval != "2s" {
		t.Errorf("expected settle interval '2s', got %q", cfg.Browser.DefaultSettleInterval)
	}
	if cfg.Browser.MaxConcurrentSessions != 4 {
		t.Errorf("expected max concurrent sessions 4, got %d", cfg.Browser.MaxConcurrentSessions)
	}
	if cfg.Browser.ViewportWidth != 1920 {
		t.Errorf("expected viewport width 1920, got %d", cfg.Browser.ViewportWidth)
	}
	if cfg.Browser.ViewportHeight != 1080 {
		t.Errorf("expected viewport height 1080, got %d", cfg.Browser.ViewportHeight)
	}

	// Instrumentation defaults
	if cfg.Instrumentation.EventBufferCapacity != 500 {
		t.Errorf("expected event buffer capacity 500, got %d", cfg.Instrumentation.EventBufferCapacity)
	}
	if cfg.Instrumentation.MaxBodyBytes != 65536 {
		t.Errorf("expected max body bytes 65536, got %d", cfg.Instrumentation.MaxBodyBytes)
	}
	if cfg.Instrumentation.EnableCoverage {
		t.Error("expected EnableCoverage to be false")
	}
	if len(cfg.Instrumentation.RedactHeaders) == 0 {
		t.Error("expected default redact headers to be non-empty")
	}

	// Source map defaults
	if cfg.SourceMap.CacheCapacity != 50 {
		t.Errorf("expected source map cache capacity 50, got %d", cfg.SourceMap.CacheCapacity)
	}
	if cfg.SourceMap.ResolutionCacheCapacity != 500 {
		t.Errorf("expected resolution cache capacity 500, got %d", cfg.SourceMap.ResolutionCacheCapacity)
	}

	// Reasoner defaults
	if cfg.Reasoner.CorrelationWindow != "2s" {
		t.Errorf("expected correlation window '2s', got %q", cfg.Reasoner.CorrelationWindow)
	}
	if cfg.Reasoner.MinSimilarityScore != 0.3 {
		t.Errorf("expected min similarity score 0.3, got %v", cfg.Reasoner.MinSimilarityScore)
	}

	// Dispatcher defaults
	if cfg.Dispatcher.DefaultTimeout != "30s" {
		t.Errorf("expected dispatcher timeout '30s', got %q", cfg.Dispatcher.DefaultTimeout)
	}
	if cfg.Dispatcher.OutputCharCap != 25000 {
		t.Errorf("expected output char cap 25000, got %d", cfg.Dispatcher.OutputCharCap)
	}
	if cfg.Dispatcher.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Dispatcher.DefaultPageSize)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Error("expected error for empty path")
	}
	if err.Error() != "config path is required" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadValidConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  name: "test-server"
  version: "1.0.0"
  log_file: "test.log"

browser:
  debugger_url: "ws://localhost:9222"
  auto_start: true
  headless: true
  default_navigation_timeout: "20s"
  max_concurrent_sessions: 8
  viewport_width: 1280
  viewport_height: 720

source_map:
  cache_capacity: 100

build_index:
  project_root: "./dist"
  preferred_type: "webpack"

dispatcher:
  output_char_cap: 50000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Server.Name != "test-server" {
		t.Errorf("expected server name 'test-server', got %q", cfg.Server.Name)
	}
	if cfg.Server.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", cfg.Server.Version)
	}
	if cfg.Browser.DebuggerURL != "ws://localhost:9222" {
		t.Errorf("expected debugger URL 'ws://localhost:9222', got %q", cfg.Browser.DebuggerURL)
	}
	if cfg.Browser.ViewportWidth != 1280 {
		t.Errorf("expected viewport width 1280, got %d", cfg.Browser.ViewportWidth)
	}
	if cfg.Browser.MaxConcurrentSessions != 8 {
		t.Errorf("expected max concurrent sessions 8, got %d", cfg.Browser.MaxConcurrentSessions)
	}
	if cfg.SourceMap.CacheCapacity != 100 {
		t.Errorf("expected source map cache capacity 100, got %d", cfg.SourceMap.CacheCapacity)
	}
	if cfg.BuildIndex.ProjectRoot != "./dist" {
		t.Errorf("expected project root './dist', got %q", cfg.BuildIndex.ProjectRoot)
	}
	if cfg.BuildIndex.PreferredType != "webpack" {
		t.Errorf("expected preferred type 'webpack', got %q", cfg.BuildIndex.PreferredType)
	}
	if cfg.Dispatcher.OutputCharCap != 50000 {
		t.Errorf("expected output char cap 50000, got %d", cfg.Dispatcher.OutputCharCap)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Invalid YAML content
	if err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty server name",
			cfg:     Config{Server: ServerConfig{Name: ""}},
			wantErr: true,
			errMsg:  "server.name is required",
		},
		{
			name: "auto_start without debugger_url or launch",
			cfg: Config{
				Server:  ServerConfig{Name: "test"},
				Browser: BrowserConfig{AutoStart: true, MaxConcurrentSessions: 4},
			},
			wantErr: true,
			errMsg:  "browser.debugger_url or browser.launch must be provided",
		},
		{
			name: "auto_start with debugger_url",
			cfg: Config{
				Server:  ServerConfig{Name: "test"},
				Browser: BrowserConfig{AutoStart: true, DebuggerURL: "ws://localhost:9222", MaxConcurrentSessions: 4},
			},
			wantErr: false,
		},
		{
			name: "auto_start with launch",
			cfg: Config{
				Server:  ServerConfig{Name: "test"},
				Browser: BrowserConfig{AutoStart: true, Launch: []string{"chrome"}, MaxConcurrentSessions: 4},
			},
			wantErr: false,
		},
		{
			name: "auto_start false without debugger_url",
			cfg: Config{
				Server:  ServerConfig{Name: "test"},
				Browser: BrowserConfig{AutoStart: false, MaxConcurrentSessions: 4},
			},
			wantErr: false,
		},
		{
			name: "zero max concurrent sessions",
			cfg: Config{
				Server:  ServerConfig{Name: "test"},
				Browser: BrowserConfig{AutoStart: false, MaxConcurrentSessions: 0},
			},
			wantErr: true,
			errMsg:  "browser.max_concurrent_sessions must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNavigationTimeout(t *testing.T) {
	tests := []struct {
		name     string
		timeout  string
		expected time.Duration
	}{
		{"empty string", "", 30 * time.Second},
		{"valid duration", "20s", 20 * time.Second},
		{"invalid duration", "invalid", 30 * time.Second},
		{"milliseconds", "500ms", 500 * time.Millisecond},
		{"minutes", "2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BrowserConfig{DefaultNavigationTimeout: tt.timeout}
			result := cfg.NavigationTimeout()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSettleInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		expected time.Duration
	}{
		{"empty string", "", 2 * time.Second},
		{"valid duration", "1s", 1 * time.Second},
		{"invalid duration", "not-a-duration", 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BrowserConfig{DefaultSettleInterval: tt.interval}
			result := cfg.SettleInterval()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestIsHeadless(t *testing.T) {
	t.Run("nil headless defaults to true", func(t *testing.T) {
		cfg := BrowserConfig{Headless: nil}
		if !cfg.IsHeadless() {
			t.Error("expected true when Headless is nil")
		}
	})

	t.Run("explicit true", func(t *testing.T) {
		val := true
		cfg := BrowserConfig{Headless: &val}
		if !cfg.IsHeadless() {
			t.Error("expected true when Headless is true")
		}
	})

	t.Run("explicit false", func(t *testing.T) {
		val := false
		cfg := BrowserConfig{Headless: &val}
		if cfg.IsHeadless() {
			t.Error("expected false when Headless is false")
		}
	})
}

func TestGetViewportWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{"zero defaults to 1920", 0, 1920},
		{"negative defaults to 1920", -100, 1920},
		{"custom width", 1280, 1280},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BrowserConfig{ViewportWidth: tt.width}
			result := cfg.GetViewportWidth()
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestGetViewportHeight(t *testing.T) {
	tests := []struct {
		name     string
		height   int
		expected int
	}{
		{"zero defaults to 1080", 0, 1080},
		{"negative defaults to 1080", -50, 1080},
		{"custom height", 720, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BrowserConfig{ViewportHeight: tt.height}
			result := cfg.GetViewportHeight()
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestMaxSessions(t *testing.T) {
	tests := []struct {
		name     string
		max      int
		expected int
	}{
		{"zero defaults to 4", 0, 4},
		{"negative defaults to 4", -2, 4},
		{"custom value", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BrowserConfig{MaxConcurrentSessions: tt.max}
			result := cfg.MaxSessions()
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestInstrumentationDefaults(t *testing.T) {
	t.Run("buffer capacity fallback", func(t *testing.T) {
		cfg := InstrumentationConfig{EventBufferCapacity: 0}
		if cfg.BufferCapacity() != 500 {
			t.Errorf("expected 500, got %d", cfg.BufferCapacity())
		}
	})
	t.Run("body cap fallback", func(t *testing.T) {
		cfg := InstrumentationConfig{MaxBodyBytes: 0}
		if cfg.BodyCap() != 65536 {
			t.Errorf("expected 65536, got %d", cfg.BodyCap())
		}
	})
	t.Run("custom values honored", func(t *testing.T) {
		cfg := InstrumentationConfig{EventBufferCapacity: 100, MaxBodyBytes: 1024}
		if cfg.BufferCapacity() != 100 || cfg.BodyCap() != 1024 {
			t.Error("expected custom values to be honored")
		}
	})
}

func TestReasonerDefaults(t *testing.T) {
	t.Run("window fallback", func(t *testing.T) {
		cfg := ReasonerConfig{CorrelationWindow: ""}
		if cfg.Window() != 2*time.Second {
			t.Errorf("expected 2s, got %v", cfg.Window())
		}
	})
	t.Run("threshold fallback", func(t *testing.T) {
		cfg := ReasonerConfig{MinSimilarityScore: 0}
		if cfg.Threshold() != 0.3 {
			t.Errorf("expected 0.3, got %v", cfg.Threshold())
		}
	})
}

func TestDispatcherDefaults(t *testing.T) {
	t.Run("timeout fallback", func(t *testing.T) {
		cfg := DispatcherConfig{DefaultTimeout: ""}
		if cfg.Timeout() != 30*time.Second {
			t.Errorf("expected 30s, got %v", cfg.Timeout())
		}
	})
	t.Run("char cap fallback", func(t *testing.T) {
		cfg := DispatcherConfig{OutputCharCap: 0}
		if cfg.CharCap() != 25000 {
			t.Errorf("expected 25000, got %d", cfg.CharCap())
		}
	})
	t.Run("page size fallback", func(t *testing.T) {
		cfg := DispatcherConfig{DefaultPageSize: 0}
		if cfg.PageSize() != 20 {
			t.Errorf("expected 20, got %d", cfg.PageSize())
		}
	})
}

func TestSourceMapDefaults(t *testing.T) {
	t.Run("fetch timeout fallback", func(t *testing.T) {
		cfg := SourceMapConfig{FetchTimeout: ""}
		if cfg.FetchTimeoutDuration() != 5*time.Second {
			t.Errorf("expected 5s, got %v", cfg.FetchTimeoutDuration())
		}
	})
	t.Run("lru capacity fallback", func(t *testing.T) {
		cfg := SourceMapConfig{CacheCapacity: 0}
		if cfg.LRUCapacity() != 50 {
			t.Errorf("expected 50, got %d", cfg.LRUCapacity())
		}
	})
	t.Run("memo capacity fallback", func(t *testing.T) {
		cfg := SourceMapConfig{ResolutionCacheCapacity: 0}
		if cfg.MemoCapacity() != 500 {
			t.Errorf("expected 500, got %d", cfg.MemoCapacity())
		}
	})
}


