package mcp

import (
	"context"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/component"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// componentTools bundles the Component Introspector dependencies every
// component_* tool shares: a scoped page acquisition plus the Source Map
// Cache for getSource's location resolution.
type componentTools struct {
	sessions *browser.SessionManager
	il       *instrumentation.Manager
	sm       *sourcemap.Cache
}

func (c componentTools) open(ctx context.Context, url string) (*component.Inspector, func(), error) {
	page, _, release, err := openScoped(ctx, c.sessions, c.il, url)
	if err != nil {
		return nil, func() {}, dispatcher.FromDomainError(err)
	}
	return component.New(page, c.sm), release, nil
}

// ComponentTreeTool implements component_tree (spec.md §4.5's tree op).
type ComponentTreeTool struct{ componentTools }

func (t *ComponentTreeTool) Name() string { return "component_tree" }
func (t *ComponentTreeTool) Description() string {
	return "Returns the live page's framework-aware component tree (React/Vue/Angular/Svelte), depth-bounded, with DOM-heuristic fallback when no devtools hook is present."
}
func (t *ComponentTreeTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url"}, map[string]interface{}{
		"url":            strProp("page URL to navigate to and inspect"),
		"selector":       strProp("CSS selector scoping the subtree root (default: document root)"),
		"max_depth":      intProp("maximum tree depth to descend", 10),
		"include_props":  boolProp("include each component's props in the tree", false),
	})
}
func (t *ComponentTreeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector := optString(args, "selector", "")
	maxDepth := optInt(args, "max_depth", 10)
	includeProps := optBool(args, "include_props", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	framework := component.DetectFramework(ctx, insp.Page(), selector)
	nodes, err := insp.Tree(ctx, selector, maxDepth, includeProps)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	return map[string]interface{}{"framework": framework, "nodes": nodes}, nil
}

// ComponentFindByNameTool implements component_find_by_name.
type ComponentFindByNameTool struct{ componentTools }

func (t *ComponentFindByNameTool) Name() string { return "component_find_by_name" }
func (t *ComponentFindByNameTool) Description() string {
	return "Finds component instances by name, returning selector hints, viewport coordinates, and visibility."
}
func (t *ComponentFindByNameTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "name"}, map[string]interface{}{
		"url":   strProp("page URL to navigate to and inspect"),
		"name":  strProp("component name to search for"),
		"exact": boolProp("require an exact name match rather than substring", false),
	})
}
func (t *ComponentFindByNameTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	exact := optBool(args, "exact", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	nodes, err := insp.FindByName(ctx, name, exact)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	if len(nodes) == 0 {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no component matched name "+name, "try a substring match (exact=false) or confirm the component rendered")
	}
	return map[string]interface{}{"instances": nodes}, nil
}

// ComponentGetPropsTool implements component_get_props.
type ComponentGetPropsTool struct{ componentTools }

func (t *ComponentGetPropsTool) Name() string { return "component_get_props" }
func (t *ComponentGetPropsTool) Description() string {
	return "Returns a component's current props, or {supported:false} when the framework adapter can't answer."
}
func (t *ComponentGetPropsTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":              strProp("page URL to navigate to and inspect"),
		"selector":         strProp("CSS selector identifying the component's root element"),
		"include_defaults": boolProp("include default prop values", false),
	})
}
func (t *ComponentGetPropsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	includeDefaults := optBool(args, "include_defaults", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	props, unsupported, err := insp.GetProps(ctx, selector, includeDefaults)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	if !unsupported.Supported {
		return unsupported, nil
	}
	return map[string]interface{}{"supported": true, "props": props}, nil
}

// ComponentGetStateTool implements component_get_state.
type ComponentGetStateTool struct{ componentTools }

func (t *ComponentGetStateTool) Name() string { return "component_get_state" }
func (t *ComponentGetStateTool) Description() string {
	return "Returns a component's internal state (React hooks, Vue reactive data), or {supported:false} for frameworks without a state adapter."
}
func (t *ComponentGetStateTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":              strProp("page URL to navigate to and inspect"),
		"selector":         strProp("CSS selector identifying the component's root element"),
		"include_computed": boolProp("include derived/computed state", false),
	})
}
func (t *ComponentGetStateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	includeComputed := optBool(args, "include_computed", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	state, unsupported, err := insp.GetState(ctx, selector, includeComputed)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	if !unsupported.Supported {
		return unsupported, nil
	}
	return map[string]interface{}{"supported": true, "state": state}, nil
}

// ComponentGetHooksTool implements component_get_hooks.
type ComponentGetHooksTool struct{ componentTools }

func (t *ComponentGetHooksTool) Name() string { return "component_get_hooks" }
func (t *ComponentGetHooksTool) Description() string {
	return "Returns React hook state (useState/useReducer slots) for a function component; {supported:false} for non-React frameworks."
}
func (t *ComponentGetHooksTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":             strProp("page URL to navigate to and inspect"),
		"selector":        strProp("CSS selector identifying the component's root element"),
		"include_effects": boolProp("include useEffect entries", false),
	})
}
func (t *ComponentGetHooksTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	includeEffects := optBool(args, "include_effects", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	hooks, unsupported, err := insp.GetHooks(ctx, selector, includeEffects)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	if !unsupported.Supported {
		return unsupported, nil
	}
	return map[string]interface{}{"supported": true, "hooks": hooks}, nil
}

// ComponentGetContextTool implements component_get_context.
type ComponentGetContextTool struct{ componentTools }

func (t *ComponentGetContextTool) Name() string { return "component_get_context" }
func (t *ComponentGetContextTool) Description() string {
	return "Returns React/Vue context providers visible to a component. Always {supported:false}: no devtools bridge exposes context providers over a plain CDP session."
}
func (t *ComponentGetContextTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":               strProp("page URL to navigate to and inspect"),
		"selector":          strProp("CSS selector identifying the component's root element"),
		"include_providers": boolProp("include provider component names", false),
	})
}
func (t *ComponentGetContextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	includeProviders := optBool(args, "include_providers", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	_, unsupported, err := insp.GetContext(ctx, selector, includeProviders)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	return unsupported, nil
}

// ComponentTrackRendersTool implements component_track_renders.
type ComponentTrackRendersTool struct{ componentTools }

func (t *ComponentTrackRendersTool) Name() string { return "component_track_renders" }
func (t *ComponentTrackRendersTool) Description() string {
	return "Opens a window and counts observed re-renders of a component, approximated via subtree-change polling when no devtools render-commit hook is attached."
}
func (t *ComponentTrackRendersTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":             strProp("page URL to navigate to and inspect"),
		"selector":        strProp("CSS selector identifying the component's root element"),
		"duration_ms":     intProp("window length in milliseconds", 2000),
		"capture_reasons": boolProp("attach a best-effort reason label to each render event", false),
	})
}
func (t *ComponentTrackRendersTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	durationMs := optInt(args, "duration_ms", 2000)
	captureReasons := optBool(args, "capture_reasons", false)

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	trace, err := insp.TrackRenders(ctx, selector, durationMs, captureReasons)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	return trace, nil
}

// ComponentGetSourceTool implements component_get_source.
type ComponentGetSourceTool struct{ componentTools }

func (t *ComponentGetSourceTool) Name() string { return "component_get_source" }
func (t *ComponentGetSourceTool) Description() string {
	return "Combines devtools source-file annotations with the Source Map Cache to locate a component's original source definition."
}
func (t *ComponentGetSourceTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and inspect"),
		"selector": strProp("CSS selector identifying the component's root element"),
	})
}
func (t *ComponentGetSourceTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}

	insp, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	loc, err := insp.GetSource(ctx, selector)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	return loc, nil
}
