package component

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// Inspector introspects a single page's live component tree, dispatching to
// the per-framework adapter the selector-scoped subtree reports.
type Inspector struct {
	page *rod.Page
	sm   *sourcemap.Cache // optional; used by GetSource
}

// New binds an inspector to a page. sm may be nil if source-location
// resolution is not needed.
func New(page *rod.Page, sm *sourcemap.Cache) *Inspector {
	return &Inspector{page: page, sm: sm}
}

// Page returns the inspector's bound page, so callers can run their own
// selector-existence checks or other page-level queries alongside it.
func (i *Inspector) Page() *rod.Page {
	return i.page
}

// Tree returns the ordered children at each level under selector, depth
// bounded by maxDepth (spec.md §4.5's tree operation).
func (i *Inspector) Tree(ctx context.Context, selector string, maxDepth int, includeProps bool) ([]Node, error) {
	framework := DetectFramework(ctx, i.page, selector)

	var js string
	args := []interface{}{selector, maxDepth, includeProps}
	switch framework {
	case React:
		js = reactTreeJS
	case Vue:
		js = vueTreeJS
	case Angular:
		js = angularTreeJS
	case Svelte:
		js = svelteTreeJS
	default:
		js = domTreeJS
		args = []interface{}{selector, maxDepth}
	}

	var nodes []Node
	if err := i.evalInto(ctx, js, args, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// FindByName returns instances matching name with selector hints, viewport
// coordinates, and visibility (spec.md §4.5's findByName).
func (i *Inspector) FindByName(ctx context.Context, name string, exact bool) ([]Node, error) {
	framework := DetectFramework(ctx, i.page, "")

	var js string
	switch framework {
	case React:
		js = reactFindByNameJS
	default:
		js = domFindByNameJS
	}

	var nodes []Node
	if err := i.evalInto(ctx, js, []interface{}{name, exact}, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetProps returns a component's current props, or Unsupported when no
// framework hook can answer the question for selector.
func (i *Inspector) GetProps(ctx context.Context, selector string, includeDefaults bool) (map[string]interface{}, Unsupported, error) {
	nodes, err := i.Tree(ctx, selector, 0, true)
	if err != nil {
		return nil, Unsupported{}, err
	}
	if len(nodes) == 0 {
		return nil, unsupported("no component found at selector"), nil
	}
	if nodes[0].Props == nil {
		return nil, unsupported("framework adapter did not expose props"), nil
	}
	return nodes[0].Props, Unsupported{Supported: true}, nil
}

// GetState returns a component's internal state. Only React (hooks) and
// Vue (reactive data) adapters currently answer this; others degrade.
func (i *Inspector) GetState(ctx context.Context, selector string, includeComputed bool) (interface{}, Unsupported, error) {
	framework := DetectFramework(ctx, i.page, selector)

	switch framework {
	case Vue:
		var state map[string]interface{}
		if err := i.evalInto(ctx, vueStateJS, []interface{}{selector}, &state); err != nil {
			return nil, Unsupported{}, err
		}
		if state == nil {
			return nil, unsupported("no Vue instance found at selector"), nil
		}
		return state, Unsupported{Supported: true}, nil
	case React:
		var hooks []map[string]interface{}
		if err := i.evalInto(ctx, reactHooksJS, []interface{}{selector}, &hooks); err != nil {
			return nil, Unsupported{}, err
		}
		return hooks, Unsupported{Supported: true}, nil
	default:
		return nil, unsupported(fmt.Sprintf("state introspection not supported for framework %q", framework)), nil
	}
}

// GetHooks returns React hook state (useState/useReducer slots) for a
// function component; other frameworks have no hooks concept.
func (i *Inspector) GetHooks(ctx context.Context, selector string, includeEffects bool) (interface{}, Unsupported, error) {
	framework := DetectFramework(ctx, i.page, selector)
	if framework != React {
		return nil, unsupported(fmt.Sprintf("hooks are a React concept; detected framework %q", framework)), nil
	}

	var hooks []map[string]interface{}
	if err := i.evalInto(ctx, reactHooksJS, []interface{}{selector}, &hooks); err != nil {
		return nil, Unsupported{}, err
	}
	return hooks, Unsupported{Supported: true}, nil
}

// GetContext is a best-effort degrade: without a devtools bridge exposing
// context providers directly, this always returns Unsupported.
func (i *Inspector) GetContext(ctx context.Context, selector string, includeProviders bool) (interface{}, Unsupported, error) {
	return nil, unsupported("context provider introspection requires a devtools bridge not available headlessly"), nil
}

// TrackRenders opens a window of durationMs, polling the tree for visible
// change as a proxy for render notifications (devtools render-tracking
// hooks are unavailable outside an attached React/Vue devtools extension).
func (i *Inspector) TrackRenders(ctx context.Context, selector string, durationMs int, captureReasons bool) (RenderTrace, error) {
	deadline := time.Now().Add(time.Duration(durationMs) * time.Millisecond)
	var events []RenderEvent
	var lastSnapshot string

	start := time.Now()
	for time.Now().Before(deadline) {
		nodes, err := i.Tree(ctx, selector, 3, true)
		if err != nil {
			return RenderTrace{}, err
		}
		snap, _ := json.Marshal(nodes)
		if string(snap) != lastSnapshot && lastSnapshot != "" {
			ev := RenderEvent{Timestamp: time.Since(start).Seconds() * 1000}
			if captureReasons {
				ev.Reasons = []string{"subtree changed"}
			}
			events = append(events, ev)
		}
		lastSnapshot = string(snap)

		select {
		case <-ctx.Done():
			return RenderTrace{}, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	trace := RenderTrace{Count: len(events), Events: events}
	if len(events) > 0 {
		var total float64
		prev := 0.0
		for _, e := range events {
			total += e.Timestamp - prev
			prev = e.Timestamp
		}
		trace.AverageMs = total / float64(len(events))
	}
	return trace, nil
}

// GetSource combines devtools source-file info (when the build embeds
// __source debug annotations) with SMC stack resolution to locate a
// component's definition (spec.md §4.5's getSource).
func (i *Inspector) GetSource(ctx context.Context, selector string) (SourceLocation, error) {
	var raw struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	if err := i.evalInto(ctx, sourceJS, []interface{}{selector}, &raw); err != nil {
		return SourceLocation{}, err
	}
	if raw.File == "" {
		return SourceLocation{Found: false}, nil
	}
	if i.sm != nil {
		loc := i.sm.Resolve(ctx, raw.File, raw.Line, raw.Column)
		if loc.Resolved {
			return SourceLocation{File: loc.OriginalFile, Line: loc.OriginalLine, Column: loc.OriginalCol, Found: true}, nil
		}
	}
	return SourceLocation{File: raw.File, Line: raw.Line, Column: raw.Column, Found: true}, nil
}

const sourceJS = `
(selector) => {
	const el = document.querySelector(selector);
	if (!el) return {};
	const fiberKey = Object.keys(el).find(k => k.startsWith('__reactFiber'));
	if (fiberKey) {
		const fiber = el[fiberKey];
		const source = fiber._debugSource || (fiber.return && fiber.return._debugSource);
		if (source) return { file: source.fileName, line: source.lineNumber, column: source.columnNumber };
	}
	return {};
}
`

func (i *Inspector) evalInto(ctx context.Context, js string, args []interface{}, out interface{}) error {
	res, err := i.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if res == nil || res.Value.Nil() {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal eval result: %w", err)
	}
	return json.Unmarshal(raw, out)
}
