package mcp

import (
	"context"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// sourceTools bundles the Source Map Cache every source_* tool operates
// against. Most of these tools never touch the browser: SMC fetches
// generated scripts, maps, and sources directly over HTTP (spec.md §4.3).
type sourceTools struct {
	sm *sourcemap.Cache
}

// sourceCoverageTools additionally needs a live, coverage-enabled session,
// since V8 precise coverage is only available while a page is running.
type sourceCoverageTools struct {
	sourceTools
	sessions *browser.SessionManager
	il       *instrumentation.Manager
}

// SourceMapResolveTool implements source_map_resolve.
type SourceMapResolveTool struct{ sourceTools }

func (t *SourceMapResolveTool) Name() string { return "source_map_resolve" }
func (t *SourceMapResolveTool) Description() string {
	return "Resolves a minified (generatedUrl, line, column) position back to its original file/line/column/name via the cached source map."
}
func (t *SourceMapResolveTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"generated_url", "line", "column"}, map[string]interface{}{
		"generated_url": strProp("URL of the generated (minified/bundled) script"),
		"line":          intProp("1-indexed generated line number", 1),
		"column":        intProp("0-indexed generated column number", 0),
	})
}
func (t *SourceMapResolveTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "generated_url")
	if err != nil {
		return nil, err
	}
	line := optInt(args, "line", 0)
	col := optInt(args, "column", 0)

	return t.sm.Resolve(ctx, url, line, col), nil
}

// SourceMapGetContentTool implements source_map_get_content.
type SourceMapGetContentTool struct{ sourceTools }

func (t *SourceMapGetContentTool) Name() string { return "source_map_get_content" }
func (t *SourceMapGetContentTool) Description() string {
	return "Returns the original source content for a file already indexed by a resolved source map, optionally scoped to a line range."
}
func (t *SourceMapGetContentTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"file"}, map[string]interface{}{
		"file":       strProp("original source file path, as returned by source_map_resolve"),
		"start_line": intProp("1-indexed first line to return (0 = from the start)", 0),
		"end_line":   intProp("1-indexed last line to return (0 = to the end)", 0),
	})
}
func (t *SourceMapGetContentTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	file, err := requireString(args, "file")
	if err != nil {
		return nil, err
	}
	start := optInt(args, "start_line", 0)
	end := optInt(args, "end_line", 0)

	content, err := t.sm.GetSource(ctx, file, start, end)
	if err != nil {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, err.Error(), "resolve a location from this file via source_map_resolve first so its map is indexed")
	}
	return content, nil
}

// SourceTraceStackTool implements source_trace_stack.
type SourceTraceStackTool struct{ sourceTools }

func (t *SourceTraceStackTool) Name() string { return "source_trace_stack" }
func (t *SourceTraceStackTool) Description() string {
	return "Resolves every frame of a V8/SpiderMonkey/JSC stack trace string back to original source; unresolved frames pass through rather than aborting the call."
}
func (t *SourceTraceStackTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"stack"}, map[string]interface{}{
		"stack": strProp("raw stack trace text"),
	})
}
func (t *SourceTraceStackTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	stack, err := requireString(args, "stack")
	if err != nil {
		return nil, err
	}
	return t.sm.ResolveStack(ctx, stack), nil
}

// SourceFindDefinitionTool implements source_find_definition.
type SourceFindDefinitionTool struct{ sourceTools }

func (t *SourceFindDefinitionTool) Name() string { return "source_find_definition" }
func (t *SourceFindDefinitionTool) Description() string {
	return "Best-effort lexical scan of indexed sources for a symbol's function/class/const declaration."
}
func (t *SourceFindDefinitionTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"symbol"}, map[string]interface{}{
		"symbol":      strProp("identifier to search for"),
		"file_filter": strProp("only search files whose path contains this substring"),
	})
}
func (t *SourceFindDefinitionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	symbol, err := requireString(args, "symbol")
	if err != nil {
		return nil, err
	}
	fileFilter := optString(args, "file_filter", "")

	def, ok := t.sm.FindDefinition(ctx, symbol, fileFilter)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no declaration of "+symbol+" found in indexed sources", "resolve a location from the relevant bundle first via source_map_resolve so its sources are indexed")
	}
	return def, nil
}

// SourceGetSymbolsTool implements source_get_symbols.
type SourceGetSymbolsTool struct{ sourceTools }

func (t *SourceGetSymbolsTool) Name() string { return "source_get_symbols" }
func (t *SourceGetSymbolsTool) Description() string {
	return "Lists named function/class/const exports declared across indexed original sources, optionally scoped to a file path substring."
}
func (t *SourceGetSymbolsTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"file_filter": strProp("only list symbols from files whose path contains this substring"),
	})
}
func (t *SourceGetSymbolsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	fileFilter := optString(args, "file_filter", "")
	return map[string]interface{}{"symbols": t.sm.Symbols(fileFilter)}, nil
}

// SourceMapBundleTool implements source_map_bundle.
type SourceMapBundleTool struct{ sourceTools }

func (t *SourceMapBundleTool) Name() string { return "source_map_bundle" }
func (t *SourceMapBundleTool) Description() string {
	return "Lists every original source a bundle's source map covers, with a handful of sample mappings for diagnostics."
}
func (t *SourceMapBundleTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"bundle_url"}, map[string]interface{}{
		"bundle_url": strProp("URL of the generated (minified/bundled) script"),
	})
}
func (t *SourceMapBundleTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	bundleURL, err := requireString(args, "bundle_url")
	if err != nil {
		return nil, err
	}

	sources, err := t.sm.BundleSources(ctx, bundleURL)
	if err != nil {
		return nil, dispatcher.NewFailure(dispatcher.SourceMapUnavailable, err.Error(), "ensure the bundle is built with devtool:'source-map' and the .map file is served alongside it")
	}
	return sources, nil
}

// SourceCoverageMapTool implements source_coverage_map. Unlike the rest of
// sourceTools it needs a live, coverage-enabled page: V8 precise coverage is
// only observable while a script is actually running.
type SourceCoverageMapTool struct{ sourceCoverageTools }

func (t *SourceCoverageMapTool) Name() string { return "source_coverage_map" }
func (t *SourceCoverageMapTool) Description() string {
	return "Navigates to url, records V8 precise code coverage, and maps covered/uncovered line counts back onto original source files."
}
func (t *SourceCoverageMapTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url"}, map[string]interface{}{
		"url": strProp("page URL to navigate to and profile"),
	})
}
func (t *SourceCoverageMapTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}

	_, buf, release, err := openScoped(ctx, t.sessions, t.il, url)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	release()

	raw := buf.Coverage.Snapshot()
	scripts := make([]sourcemap.ScriptCoverage, 0, len(raw))
	for _, ev := range raw {
		ranges := make([]sourcemap.CoverageRange, 0, len(ev.RangesCovered))
		for _, r := range ev.RangesCovered {
			ranges = append(ranges, sourcemap.CoverageRange{
				StartOffset: r.StartOffset,
				EndOffset:   r.EndOffset,
				Count:       r.Count,
			})
		}
		scripts = append(scripts, sourcemap.ScriptCoverage{URL: ev.ScriptURL, Ranges: ranges})
	}

	perFile := t.sm.MapCoverage(ctx, scripts)
	return map[string]interface{}{"per_file": perFile}, nil
}
