package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/buildindex"
	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/reasoner"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Server wires the MCP runtime to the engine's seven components and
// dispatches every advertised tool through the Tool Dispatcher's
// validation/timeout/truncation contract (spec.md §4.7).
type Server struct {
	cfg       config.Config
	sessions  *browser.SessionManager
	il        *instrumentation.Manager
	sm        *sourcemap.Cache
	index     *buildindex.Index
	reasoner  *reasoner.Reasoner
	tools     map[string]Tool
	schemas   map[string]*jsonschema.Schema
	mcpServer *mcpserver.MCPServer
}

// Tool describes the contract every engine tool implementation satisfies.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// NewServer constructs the Frontend Intelligence Engine's MCP server and
// registers every tool named in spec.md §6's tool surface.
func NewServer(
	cfg config.Config,
	sessions *browser.SessionManager,
	il *instrumentation.Manager,
	sm *sourcemap.Cache,
	index *buildindex.Index,
	reas *reasoner.Reasoner,
) (*Server, error) {
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		cfg:       cfg,
		sessions:  sessions,
		il:        il,
		sm:        sm,
		index:     index,
		reasoner:  reas,
		tools:     make(map[string]Tool),
		schemas:   make(map[string]*jsonschema.Schema),
		mcpServer: mcpSrv,
	}

	server.registerAllTools()
	return server, nil
}

// Start launches the stdio transport (the default for Claude/Gemini-style
// MCP clients).
func (s *Server) Start(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE hosts the server over HTTP using SSE endpoints with graceful shutdown.
func (s *Server) StartSSE(ctx context.Context, port int) error {
	sseServer := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL("http://localhost:"+strconv.Itoa(port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Printf("SSE server shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ExecuteTool runs a tool directly, bypassing the MCP transport (used by
// tests and the engine's own integration harness).
func (s *Server) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return s.invoke(ctx, tool, args)
}

func (s *Server) registerAllTools() {
	comp := componentTools{sessions: s.sessions, il: s.il, sm: s.sm}
	s.registerTool(&ComponentTreeTool{comp})
	s.registerTool(&ComponentFindByNameTool{comp})
	s.registerTool(&ComponentGetPropsTool{comp})
	s.registerTool(&ComponentGetStateTool{comp})
	s.registerTool(&ComponentGetHooksTool{comp})
	s.registerTool(&ComponentGetContextTool{comp})
	s.registerTool(&ComponentTrackRendersTool{comp})
	s.registerTool(&ComponentGetSourceTool{comp})

	net := networkTools{sessions: s.sessions, il: s.il, sm: s.sm, cfg: s.cfg.Dispatcher}
	s.registerTool(&NetworkGetRequestsTool{net})
	s.registerTool(&NetworkGetByURLTool{net})
	s.registerTool(&NetworkGetTimingTool{net})
	s.registerTool(&NetworkTraceInitiatorTool{net})
	s.registerTool(&NetworkGetHeadersTool{net})
	s.registerTool(&NetworkGetBodyTool{net})

	src := sourceTools{sm: s.sm}
	s.registerTool(&SourceMapResolveTool{src})
	s.registerTool(&SourceMapGetContentTool{src})
	s.registerTool(&SourceTraceStackTool{src})
	s.registerTool(&SourceFindDefinitionTool{src})
	s.registerTool(&SourceGetSymbolsTool{src})
	s.registerTool(&SourceMapBundleTool{src})
	s.registerTool(&SourceCoverageMapTool{sourceCoverageTools{sourceTools: src, sessions: s.sessions, il: s.il}})

	build := buildTools{index: s.index}
	s.registerTool(&BuildGetManifestTool{build})
	s.registerTool(&BuildGetChunksTool{build})
	s.registerTool(&BuildFindModuleTool{build})
	s.registerTool(&BuildGetDependenciesTool{build})
	s.registerTool(&BuildAnalyzeSizeTool{build})

	errs := errorTools{sessions: s.sessions, il: s.il, reasoner: s.reasoner}
	s.registerTool(&ErrorResolveStackTool{errs})
	s.registerTool(&ErrorGetContextTool{errs})
	s.registerTool(&ErrorTraceCauseTool{errs})
	s.registerTool(&ErrorGetSimilarTool{errs})

	wf := workflowTools{sessions: s.sessions, il: s.il, sm: s.sm, index: s.index, reasoner: s.reasoner, cfg: s.cfg.Dispatcher}
	s.registerTool(&DebugFrontendIssueTool{wf})
	s.registerTool(&AnalyzePerformanceTool{wf})
	s.registerTool(&InspectComponentStateTool{wf})
	s.registerTool(&TraceNetworkRequestsTool{wf})
	s.registerTool(&AnalyzeBundleSizeTool{wf})
	s.registerTool(&ResolveMinifiedErrorTool{wf})
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := dispatcher.CompileSchema(tool.Name(), tool.InputSchema())
	if err != nil {
		log.Printf("tool %s: schema did not compile, validation disabled: %v", tool.Name(), err)
	} else {
		s.schemas[tool.Name()] = schema
	}

	rawSchema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		rawSchema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), rawSchema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

// invoke enforces the Tool Dispatcher's contract end to end: schema
// validation before any session work, a wall-clock timeout, and an
// output-size cap at the serialization boundary (spec.md §4.7).
func (s *Server) invoke(ctx context.Context, tool Tool, args map[string]interface{}) (interface{}, error) {
	if schema, ok := s.schemas[tool.Name()]; ok {
		if err := dispatcher.ValidateArgs(schema, args); err != nil {
			return nil, err
		}
	}

	return dispatcher.Invoke(ctx, s.cfg.Dispatcher.Timeout(), func(ctx context.Context) (interface{}, error) {
		return tool.Execute(ctx, args)
	})
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := s.invoke(ctx, tool, args)
		if err != nil {
			failure := dispatcher.AsFailure(err)
			payload, _ := json.Marshal(failure)
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(string(payload))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result, s.cfg.Dispatcher.CharCap())
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

// marshalToolPayload serializes result and, if the encoded form exceeds
// charCap, falls back to a minimal truncation notice rather than ever
// emitting a broken MCP frame (spec.md §4.7's output size cap; individual
// tools already apply tool-specific truncation ranking before this point,
// so this is a last-resort safety net, not the primary truncation path).
func marshalToolPayload(toolName string, result interface{}, charCap int) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		if charCap <= 0 || len(payload) <= charCap {
			return payload
		}
		notice := map[string]interface{}{
			"truncated":   true,
			"total_chars": len(payload),
			"hint":        fmt.Sprintf("tool %s's output exceeded the output char cap even after its own truncation; narrow the request scope", toolName),
		}
		noticePayload, err := json.Marshal(notice)
		if err == nil {
			return noticePayload
		}
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	fallbackPayload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return fallbackPayload
	}

	return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s failed to encode payload"}`, toolName))
}
