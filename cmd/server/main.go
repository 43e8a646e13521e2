package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/buildindex"
	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	mcpserver "github.com/frontendintel/fie-mcp-server/internal/mcp"
	"github.com/frontendintel/fie-mcp-server/internal/reasoner"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

func main() {
	configPath := flag.String("config", "", "Path to the engine config file (overrides workspace config)")
	ssePort := flag.Int("sse-port", 0, "Optional SSE port override (falls back to config)")
	noWorkspace := flag.Bool("no-workspace", false, "Disable .fieintel/ workspace discovery")
	workspaceDir := flag.String("workspace-dir", "", "Explicit workspace root (skip walk-up discovery)")
	initWorkspace := flag.Bool("init-workspace", false, "Create .fieintel/ template in current directory and exit")
	flag.Parse()

	if *initWorkspace {
		root := "."
		if *workspaceDir != "" {
			root = *workspaceDir
		}
		if err := config.InitWorkspace(root); err != nil {
			log.Fatalf("failed to initialize workspace: %v", err)
		}
		log.Printf("created .fieintel/ workspace in %s", root)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := config.WorkspaceOptions{
		Disable:     *noWorkspace,
		ExplicitDir: *workspaceDir,
	}

	cfg, wsDir, err := config.LoadWithWorkspace(*configPath, opts)
	if err != nil {
		// Before we can redirect logs, write to stderr as a last resort.
		log.Fatalf("failed to load config: %v", err)
	}
	if wsDir != "" {
		log.Printf("using workspace config from %s", wsDir)
	}

	// Redirect logging to a file for stdio mode: stdout is the MCP protocol
	// stream and must carry nothing but framed responses (spec.md §7).
	if cfg.MCP.SSEPort == 0 && cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}

	if cfg.BuildIndex.ProjectRoot == "" {
		cfg.BuildIndex.ProjectRoot = os.Getenv("PROJECT_ROOT")
	}

	il := instrumentation.NewManager(cfg.Instrumentation)
	sessionManager := browser.NewSessionManager(cfg.Browser, il, cfg.Instrumentation.EnableCoverage)
	if cfg.Browser.AutoStart {
		if err := sessionManager.Start(ctx); err != nil {
			log.Fatalf("failed to initialize browser session manager: %v", err)
		}
	} else {
		log.Printf("browser auto-start disabled; the first tool call will launch/attach on demand")
	}

	sm, err := sourcemap.New(cfg.SourceMap)
	if err != nil {
		log.Fatalf("failed to initialize source map cache: %v", err)
	}

	index := buildindex.New(cfg.BuildIndex)
	reas := reasoner.New(cfg.Reasoner, sm)

	server, err := mcpserver.NewServer(cfg, sessionManager, il, sm, index, reas)
	if err != nil {
		log.Fatalf("failed to initialize MCP server: %v", err)
	}

	var startErr error
	if cfg.MCP.SSEPort > 0 {
		log.Printf("starting frontend intelligence MCP SSE server on port %d", cfg.MCP.SSEPort)
		startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
	} else {
		log.Printf("starting frontend intelligence MCP stdio server")
		startErr = server.Start(ctx)
	}

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		log.Fatalf("server exited with error: %v", startErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sessionManager.Shutdown(shutdownCtx); err != nil {
		log.Printf("browser shutdown: %v", err)
	}
}
