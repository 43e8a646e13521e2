package mcp

import (
	"context"

	"github.com/frontendintel/fie-mcp-server/internal/buildindex"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
)

// buildTools bundles the Build Artifact Index every build_* tool queries.
// None of these need a browser: the index is loaded once from disk on the
// first query and answers purely from the cached manifest (spec.md §4.4).
type buildTools struct {
	index *buildindex.Index
}

func wrapManifestErr(err error) error {
	return dispatcher.NewFailure(dispatcher.NotFound, err.Error(), "set build_index.project_root (or PROJECT_ROOT) to a directory containing a webpack stats.json or vite manifest.json and restart the server")
}

// BuildGetManifestTool implements build_get_manifest.
type BuildGetManifestTool struct{ buildTools }

func (t *BuildGetManifestTool) Name() string { return "build_get_manifest" }
func (t *BuildGetManifestTool) Description() string {
	return "Returns the normalized build manifest: bundler type, chunks, assets, and modules."
}
func (t *BuildGetManifestTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{})
}
func (t *BuildGetManifestTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	m, err := t.index.Manifest()
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	return m, nil
}

// BuildGetChunksTool implements build_get_chunks.
type BuildGetChunksTool struct{ buildTools }

func (t *BuildGetChunksTool) Name() string { return "build_get_chunks" }
func (t *BuildGetChunksTool) Description() string {
	return "Lists the build's output chunks with their files, member modules, size, and entry/initial flags."
}
func (t *BuildGetChunksTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{})
}
func (t *BuildGetChunksTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	chunks, err := t.index.Chunks()
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	return map[string]interface{}{"chunks": chunks}, nil
}

// BuildFindModuleTool implements build_find_module.
type BuildFindModuleTool struct{ buildTools }

func (t *BuildFindModuleTool) Name() string { return "build_find_module" }
func (t *BuildFindModuleTool) Description() string {
	return "Finds the best-matching module for a case-insensitive name substring, with its owning chunks and dependencies."
}
func (t *BuildFindModuleTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"name"}, map[string]interface{}{
		"name": strProp("module name or substring, e.g. \"lodash\" or \"@scope/pkg\""),
	})
}
func (t *BuildFindModuleTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}

	match, ok, err := t.index.FindModule(name)
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no module matching "+name+" in the build manifest", "check build_get_manifest for the exact module names the bundler recorded")
	}
	return match, nil
}

// BuildGetDependenciesTool implements build_get_dependencies.
type BuildGetDependenciesTool struct{ buildTools }

func (t *BuildGetDependenciesTool) Name() string { return "build_get_dependencies" }
func (t *BuildGetDependenciesTool) Description() string {
	return "Returns a module's dependency/dependent frontier, or every module's when no module is given."
}
func (t *BuildGetDependenciesTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"module": strProp("module id or name; omit to list dependencies for every module"),
	})
}
func (t *BuildGetDependenciesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	module := optString(args, "module", "")

	deps, err := t.index.Dependencies(module)
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	if module != "" && len(deps) == 0 {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no module "+module+" in the build manifest", "check build_get_manifest for the exact module names the bundler recorded")
	}
	return map[string]interface{}{"dependencies": deps}, nil
}

// BuildAnalyzeSizeTool implements build_analyze_size.
type BuildAnalyzeSizeTool struct{ buildTools }

func (t *BuildAnalyzeSizeTool) Name() string { return "build_analyze_size" }
func (t *BuildAnalyzeSizeTool) Description() string {
	return "Totals asset size by type, flags assets over a KB threshold, and returns deterministic rule-based size recommendations."
}
func (t *BuildAnalyzeSizeTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"threshold_kb": intProp("flag assets larger than this many KB", 250),
	})
}
func (t *BuildAnalyzeSizeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	threshold := optInt(args, "threshold_kb", 250)

	analysis, err := t.index.AnalyzeSize(threshold)
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	return analysis, nil
}


