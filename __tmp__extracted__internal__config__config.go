package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceDirName is the directory name for project-level engine config.
	WorkspaceDirName = ".fieintel"
	// WorkspaceConfigFile is the config file name inside the workspace directory.
	WorkspaceConfigFile = "config.yaml"
	// MaxSearchDepth limits how many parent directories to walk when discovering a workspace.
	MaxSearchDepth = 10
)

// WorkspaceOptions controls workspace discovery behavior.
type WorkspaceOptions struct {
	// Disable skips workspace discovery entirely (--no-workspace flag).
	Disable bool
	// ExplicitDir uses this directory as workspace root instead of walking up (--workspace-dir flag).
	ExplicitDir string
}

// Config captures all tunable settings for the Frontend Intelligence Engine.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Browser         BrowserConfig         `yaml:"browser"`
	MCP             MCPConfig             `yaml:"mcp"`
	Instrumentation InstrumentationConfig `yaml:"instrumentation"`
	SourceMap       SourceMapConfig       `yaml:"source_map"`
	BuildIndex      BuildIndexConfig      `yaml:"build_index"`
	Reasoner        ReasonerConfig        `yaml:"reasoner"`
	Dispatcher      DispatcherConfig      `yaml:"dispatcher"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// BrowserConfig configures how we attach to or launch Chrome for Rod.
type BrowserConfig struct {
	// Control endpoint for Rod (e.g., ws://localhost:9222). Required when launch is empty.
	DebuggerURL string `yaml:"debugger_url"`
	// Optional launch command to start Chrome in detached mode (e.g., ["chrome", "--remote-debugging-port=9222"]).
	Launch []string `yaml:"launch"`
	// AutoStart controls whether the MCP server launches/attaches to Chrome at startup.
	AutoStart bool `yaml:"auto_start"`
	// Headless controls whether Chrome runs in headless mode (default: true).
	Headless *bool `yaml:"headless"`
	// Default navigation timeout (e.g., "30s").
	DefaultNavigationTimeout string `yaml:"default_navigation_timeout"`
	// Default settle interval after navigation/load before collectors are considered warm.
	DefaultSettleInterval string `yaml:"default_settle_interval"`
	// MaxConcurrentSessions bounds the browser pool (spec M, default 4).
	MaxConcurrentSessions int `yaml:"max_concurrent_sessions"`
	// AcquireQueueTimeout bounds how long a page acquisition waits for a free slot.
	AcquireQueueTimeout string `yaml:"acquire_queue_timeout"`
	// Viewport width/height for new sessions.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
	// SessionStore persists session metadata across restarts when set.
	SessionStore string `yaml:"session_store"`
}

// InstrumentationConfig tunes the Instrumentation Layer's event buffers.
type InstrumentationConfig struct {
	// EventBufferCapacity bounds each per-kind ring buffer (spec N, default 500).
	EventBufferCapacity int `yaml:"event_buffer_capacity"`
	// MaxBodyBytes caps captured request/response bodies before truncation.
	MaxBodyBytes int `yaml:"max_body_bytes"`
	// EnableCoverage toggles V8 precise-coverage collection.
	EnableCoverage bool `yaml:"enable_coverage"`
	// RedactHeaders lists header names (case-insensitive) to redact before storage.
	RedactHeaders []string `yaml:"redact_headers"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// SourceMapConfig controls the Source Map Cache.
type SourceMapConfig struct {
	// CacheCapacity bounds the parsed-map LRU (default 50).
	CacheCapacity int `yaml:"cache_capacity"`
	// ResolutionCacheCapacity bounds the per-(url,line,col) memo cache.
	ResolutionCacheCapacity int `yaml:"resolution_cache_capacity"`
	// FetchTimeout bounds HTTP fetches of external maps/sources.
	FetchTimeout string `yaml:"fetch_timeout"`
}

// BuildIndexConfig controls the Build Artifact Index.
type BuildIndexConfig struct {
	// ProjectRoot is searched for stats.json / manifest.json. Falls back to env PROJECT_ROOT.
	ProjectRoot string `yaml:"project_root"`
	// PreferredType overrides auto-detection ("webpack" | "vite").
	PreferredType string `yaml:"preferred_type"`
}

// ReasonerConfig tunes the Error Reasoner's correlation window and thresholds.
type ReasonerConfig struct {
	// CorrelationWindow bounds how far (in time) network events are searched for a console error.
	CorrelationWindow string `yaml:"correlation_window"`
	// MinSimilarityScore is the threshold (0-1) at or above which clusters are reported as related.
	MinSimilarityScore float64 `yaml:"min_similarity_score"`
}

// DispatcherConfig tunes the Tool Dispatcher's enforcement knobs.
type DispatcherConfig struct {
	// DefaultTimeout bounds a tool call's wall clock (spec default 30s).
	DefaultTimeout string `yaml:"default_timeout"`
	// OutputCharCap bounds serialized output size (spec default 25000).
	OutputCharCap int `yaml:"output_char_cap"`
	// DefaultPageSize is used for list tools when the caller omits `limit`.
	DefaultPageSize int `yaml:"default_page_size"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "fie-mcp",
			Version: "0.1.0",
			LogFile: "fie-mcp.log",
		},
		Browser: BrowserConfig{
			AutoStart:                true,
			DefaultNavigationTimeout: "30s",
			DefaultSettleInterval:    "2s",
			MaxConcurrentSessions:    4,
			AcquireQueueTimeout:      "10s",
			ViewportWidth:            1920,
			ViewportHeight:           1080,
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
		Instrumentation: InstrumentationConfig{
			EventBufferCapacity: 500,
			MaxBodyBytes:        65536,
			EnableCoverage:      false,
			RedactHeaders:       []string{"authorization", "cookie", "set-cookie"},
		},
		SourceMap: SourceMapConfig{
			CacheCapacity:           50,
			ResolutionCacheCapacity: 500,
			FetchTimeout:            "5s",
		},
		BuildIndex: BuildIndexConfig{
			PreferredType: "",
		},
		Reasoner: ReasonerConfig{
			CorrelationWindow:  "2s",
			MinSimilarityScore: 0.3,
		},
		Dispatcher: DispatcherConfig{
			DefaultTimeout:  "30s",
			OutputCharCap:   25000,
			DefaultPageSize: 20,
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// applyEnvOverrides layers PROJECT_ROOT / BROWSER / HEADLESS on top of YAML + defaults.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PROJECT_ROOT"); v != "" {
		cfg.BuildIndex.ProjectRoot = v
	}
	if v := os.Getenv("BROWSER"); v != "" {
		cfg.Browser.Launch = []string{v}
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Headless = &b
		}
	}
}

// DiscoverWorkspace walks up from startDir looking for a .fieintel/config.yaml file.
// Returns the workspace root directory (parent of .fieintel/) or empty string if not found.
func DiscoverWorkspace(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for i := 0; i < MaxSearchDepth; i++ {
		candidate := filepath.Join(dir, WorkspaceDirName, WorkspaceConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", nil
}

// LoadWithWorkspace implements multi-layer config merge:
//
//	DefaultConfig() <- .fieintel/config.yaml <- explicit --config <- env overrides
//
// Returns the merged config and the workspace directory (empty if none found).
func LoadWithWorkspace(explicitConfig string, opts WorkspaceOptions) (Config, string, error) {
	cfg := DefaultConfig()
	wsDir := ""

	// Layer 1: Workspace config (if not disabled)
	if !opts.Disable {
		var err error
		if opts.ExplicitDir != "" {
			candidate := filepath.Join(opts.ExplicitDir, WorkspaceDirName, WorkspaceConfigFile)
			if _, statErr := os.Stat(candidate); statErr == nil {
				wsDir = opts.ExplicitDir
			}
		} else {
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return cfg, "", fmt.Errorf("getting working directory: %w", cwdErr)
			}
			wsDir, err = DiscoverWorkspace(cwd)
			if err != nil {
				return cfg, "", fmt.Errorf("discovering workspace: %w", err)
			}
		}

		if wsDir != "" {
			wsConfigPath := filepath.Join(wsDir, WorkspaceDirName, WorkspaceConfigFile)
			raw, err := os.ReadFile(wsConfigPath)
			if err != nil {
				return cfg, "", fmt.Errorf("reading workspace config %s: %w", wsConfigPath, err)
			}
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, "", fmt.Errorf("parsing workspace config %s: %w", wsConfigPath, err)
			}
			cfg = resolveWorkspacePaths(cfg, wsDir)
		}
	}

	// Layer 2: Explicit config file (--config flag)
	if explicitConfig != "" {
		raw, err := os.ReadFile(explicitConfig)
		if err != nil {
			return cfg, wsDir, fmt.Errorf("reading explicit config %s: %w", explicitConfig, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, wsDir, fmt.Errorf("parsing explicit config %s: %w", explicitConfig, err)
		}
	}

	// Layer 3: environment overrides always win.
	applyEnvOverrides(&cfg)

	return cfg, wsDir, cfg.Validate()
}

// InitWorkspace creates a .fieintel/ directory with template files at root.
func InitWorkspace(root string) error {
	wsDir := filepath.Join(root, WorkspaceDirName)

	if _, err := os.Stat(wsDir); err == nil {
		return fmt.Errorf("workspace directory already exists: %s", wsDir)
	}

	dirs := []string{
		wsDir,
		filepath.Join(wsDir, "data"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	templateConfig := `# Frontend Intelligence Engine project-level configuration
# Values here override defaults but are overridden by --config and env vars.

# build_index:
#   project_root: "./dist"
#   preferred_type: "webpack"

# browser:
#   headless: false
#   viewport_width: 1280
#   viewport_height: 720
`
	configPath := filepath.Join(wsDir, WorkspaceConfigFile)
	if err := os.WriteFile(configPath, []byte(templateConfig), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	gitignoreContent := "# Runtime data (logs) - do not version control\ndata/\n"
	gitignorePath := filepath.Join(wsDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}

// resolveWorkspacePaths resolves relative paths in the config against the workspace directory.
func resolveWorkspacePaths(cfg Config, wsDir string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wsDir, p)
	}

	cfg.Server.LogFile = resolve(cfg.Server.LogFile)
	cfg.BuildIndex.ProjectRoot = resolve(cfg.BuildIndex.ProjectRoot)
	return cfg
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Browser.AutoStart {
		if c.Browser.DebuggerURL == "" && len(c.Browser.Launch) == 0 {
			return errors.New("browser.debugger_url or browser.launch must be provided")
		}
	}
	if c.Browser.MaxConcurrentSessions <= 0 {
		return errors.New("browser.max_concurrent_sessions must be positive")
	}
	return nil
}

// NavigationTimeout returns the parsed navigation timeout with a sane default.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	return parseDurationOr(b.DefaultNavigationTimeout, 30*time.Second)
}

// SettleInterval returns the parsed post-navigation quiet period.
func (b BrowserConfig) SettleInterval() time.Duration {
	return parseDurationOr(b.DefaultSettleInterval, 2*time.Second)
}

// AcquireTimeout returns how long page acquisition waits for a free pool slot.
func (b BrowserConfig) AcquireTimeout() time.Duration {
	return parseDurationOr(b.AcquireQueueTimeout, 10*time.Second)
}

// IsHeadless returns whether Chrome should run in headless mode (default: true).
func (b BrowserConfig) IsHeadless() bool {
	if b.Headless == nil {
		return true
	}
	return *b.Headless
}

// GetViewportWidth returns the viewport width with a sane default.
func (b BrowserConfig) GetViewportWidth() int {
	if b.ViewportWidth <= 0 {
		return 1920
	}
	return b.ViewportWidth
}

// GetViewportHeight returns the viewport height with a sane default.
func (b BrowserConfig) GetViewportHeight() int {
	if b.ViewportHeight <= 0 {
		return 1080
	}
	return b.ViewportHeight
}

// MaxSessions returns the configured pool size, defaulting to 4 (spec M).
func (b BrowserConfig) MaxSessions() int {
	if b.MaxConcurrentSessions <= 0 {
		return 4
	}
	return b.MaxConcurrentSessions
}

// BufferCapacity returns the per-kind ring buffer size with a sane default.
func (i InstrumentationConfig) BufferCapacity() int {
	if i.EventBufferCapacity <= 0 {
		return 500
	}
	return i.EventBufferCapacity
}

// BodyCap returns the max captured body size with a sane default.
func (i InstrumentationConfig) BodyCap() int {
	if i.MaxBodyBytes <= 0 {
		return 65536
	}
	return i.MaxBodyBytes
}

// FetchTimeoutDuration returns the SMC's HTTP fetch timeout with a sane default.
func (s SourceMapConfig) FetchTimeoutDuration() time.Duration {
	return parseDurationOr(s.FetchTimeout, 5*time.Second)
}

// LRUCapacity returns the parsed-map cache capacity with a sane default.
func (s SourceMapConfig) LRUCapacity() int {
	if s.CacheCapacity <= 0 {
		return 50
	}
	return s.CacheCapacity
}

// MemoCapacity returns the resolution memo cache capacity with a sane default.
func (s SourceMapConfig) MemoCapacity() int {
	if s.ResolutionCacheCapacity <= 0 {
		return 500
	}
	return s.ResolutionCacheCapacity
}

// Window returns the correlation window duration with a sane default.
func (r ReasonerConfig) Window() time.Duration {
	return parseDurationOr(r.CorrelationWindow, 2*time.Second)
}

// Threshold returns the minimum similarity score with a sane default.
func (r ReasonerConfig) Threshold() float64 {
	if r.MinSimilarityScore <= 0 {
		return 0.3
	}
	return r.MinSimilarityScore
}

// Timeout returns the default per-call timeout with a sane default.
func (d DispatcherConfig) Timeout() time.Duration {
	return parseDurationOr(d.DefaultTimeout, 30*time.Second)
}

// CharCap returns the output character cap with a sane default.
func (d DispatcherConfig) CharCap() int {
	if d.OutputCharCap <= 0 {
		return 25000
	}
	return d.OutputCharCap
}

// PageSize returns the default pagination page size with a sane default.
func (d DispatcherConfig) PageSize() int {
	if d.DefaultPageSize <= 0 {
		return 20
	}
	return d.DefaultPageSize
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}


