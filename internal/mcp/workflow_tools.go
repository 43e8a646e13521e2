package mcp

import (
	"context"
	"sort"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/buildindex"
	"github.com/frontendintel/fie-mcp-server/internal/component"
	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/reasoner"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// workflowTools bundles every component the composite workflow_* tools may
// need to touch. These tools exist because a caller asking "why is this
// page broken" shouldn't have to know the engine has seven components
// (spec.md §2's control flow, composed rather than exposed piecemeal).
type workflowTools struct {
	sessions *browser.SessionManager
	il       *instrumentation.Manager
	sm       *sourcemap.Cache
	index    *buildindex.Index
	reasoner *reasoner.Reasoner
	cfg      config.DispatcherConfig
}

func (w workflowTools) open(ctx context.Context, url string) (*instrumentation.Buffers, func(), error) {
	_, buf, release, err := openScoped(ctx, w.sessions, w.il, url)
	if err != nil {
		return nil, func() {}, dispatcher.FromDomainError(err)
	}
	return buf, release, nil
}

func (w workflowTools) openPage(ctx context.Context, url string) (*component.Inspector, func(), error) {
	page, _, release, err := openScoped(ctx, w.sessions, w.il, url)
	if err != nil {
		return nil, func() {}, dispatcher.FromDomainError(err)
	}
	return component.New(page, w.sm), release, nil
}

// latestErrorFragment picks the most recent error/pageerror console message
// to use as an implicit search fragment when the caller doesn't supply one.
func latestErrorFragment(buf *instrumentation.Buffers) string {
	events := buf.Console.Snapshot()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == "error" || events[i].Kind == "pageerror" {
			return events[i].Message
		}
	}
	return ""
}

// DebugFrontendIssueTool implements debug_frontend_issue.
type DebugFrontendIssueTool struct{ workflowTools }

func (t *DebugFrontendIssueTool) Name() string { return "debug_frontend_issue" }
func (t *DebugFrontendIssueTool) Description() string {
	return "Navigates to url, picks the most recent captured error (or fragment, if given), and runs the full root-cause pipeline against it."
}
func (t *DebugFrontendIssueTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and diagnose"),
		"fragment": strProp("substring to match against captured console messages; defaults to the most recent error"),
	})
}
func (t *DebugFrontendIssueTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	fragment := optString(args, "fragment", "")

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if fragment == "" {
		fragment = latestErrorFragment(buf)
	}
	if fragment == "" {
		return map[string]interface{}{
			"found": false,
			"hint":  "no console error or pageerror was captured during the settle interval",
		}, nil
	}

	cause := t.reasoner.TraceCause(ctx, buf, fragment)
	if !cause.Found {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured console event matches "+fragment, "check error_get_similar or the page's console output for the exact wording")
	}
	return cause, nil
}

// AnalyzePerformanceTool implements analyze_performance.
type AnalyzePerformanceTool struct{ workflowTools }

func (t *AnalyzePerformanceTool) Name() string { return "analyze_performance" }
func (t *AnalyzePerformanceTool) Description() string {
	return "Navigates to url and summarizes network performance: request count, the slowest requests by total time, and any failed requests."
}
func (t *AnalyzePerformanceTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url"}, map[string]interface{}{
		"url":   strProp("page URL to navigate to and profile"),
		"top_n": intProp("number of slowest requests to return", 5),
	})
}
func (t *AnalyzePerformanceTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	topN := optInt(args, "top_n", 5)

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	events := buf.Network.Snapshot()
	var failed []instrumentation.NetworkEvent
	for _, ev := range events {
		if ev.Status >= 400 || (ev.Status == 0 && !ev.EndedAt.IsZero()) {
			failed = append(failed, ev)
		}
	}

	slowest := append([]instrumentation.NetworkEvent(nil), events...)
	sort.Slice(slowest, func(i, j int) bool { return slowest[i].Timings.TotalMs > slowest[j].Timings.TotalMs })
	if topN > 0 && len(slowest) > topN {
		slowest = slowest[:topN]
	}

	return map[string]interface{}{
		"request_count":    len(events),
		"failed_requests":  failed,
		"slowest_requests": slowest,
	}, nil
}

// InspectComponentStateTool implements inspect_component_state.
type InspectComponentStateTool struct{ workflowTools }

func (t *InspectComponentStateTool) Name() string { return "inspect_component_state" }
func (t *InspectComponentStateTool) Description() string {
	return "Navigates to url and combines a component's props, state, and hooks into a single snapshot."
}
func (t *InspectComponentStateTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "selector"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and inspect"),
		"selector": strProp("CSS selector identifying the component's root element"),
	})
}
func (t *InspectComponentStateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	selector, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}

	insp, release, err := t.openPage(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ensureSelectorExists(insp.Page(), selector); err != nil {
		return nil, err
	}

	framework := component.DetectFramework(ctx, insp.Page(), selector)

	props, propsSupported, err := insp.GetProps(ctx, selector, false)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}
	state, stateSupported, err := insp.GetState(ctx, selector, false)
	if err != nil {
		return nil, dispatcher.FromDomainError(err)
	}

	result := map[string]interface{}{"framework": framework}
	if propsSupported.Supported {
		result["props"] = props
	} else {
		result["props"] = propsSupported
	}
	if stateSupported.Supported {
		result["state"] = state
	} else {
		result["state"] = stateSupported
	}
	return result, nil
}

// TraceNetworkRequestsTool implements trace_network_requests.
type TraceNetworkRequestsTool struct{ workflowTools }

func (t *TraceNetworkRequestsTool) Name() string { return "trace_network_requests" }
func (t *TraceNetworkRequestsTool) Description() string {
	return "Navigates to url, filters requests matching a glob pattern, and resolves each one's initiator stack back to original source."
}
func (t *TraceNetworkRequestsTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "pattern"}, map[string]interface{}{
		"url":     strProp("page URL to navigate to and observe"),
		"pattern": strProp("glob pattern matched against each request's URL, '*' as wildcard"),
	})
}

type tracedRequest struct {
	Request  instrumentation.NetworkEvent `json:"request"`
	Resolved *sourcemap.ResolvedStack     `json:"resolved_initiator,omitempty"`
}

func (t *TraceNetworkRequestsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	pattern, err := requireString(args, "pattern")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	re := globToRegexp(pattern)
	var traced []tracedRequest
	for _, ev := range buf.Network.Snapshot() {
		if !re.MatchString(ev.URL) {
			continue
		}
		tr := tracedRequest{Request: ev}
		if ev.InitiatorStack != "" {
			resolved := t.sm.ResolveStack(ctx, ev.InitiatorStack)
			tr.Resolved = &resolved
		}
		traced = append(traced, tr)
	}
	sort.SliceStable(traced, func(i, j int) bool { return traced[i].Request.Seq < traced[j].Request.Seq })

	kept, trunc := dispatcher.CapByChars(traced, t.cfg.CharCap())
	return map[string]interface{}{"requests": kept, "truncation": trunc}, nil
}

// AnalyzeBundleSizeTool implements analyze_bundle_size.
type AnalyzeBundleSizeTool struct{ workflowTools }

func (t *AnalyzeBundleSizeTool) Name() string { return "analyze_bundle_size" }
func (t *AnalyzeBundleSizeTool) Description() string {
	return "Runs the build size analysis and pairs it with the largest chunks in the manifest, for a single at-a-glance bundle health check."
}
func (t *AnalyzeBundleSizeTool) InputSchema() map[string]interface{} {
	return objectSchema(nil, map[string]interface{}{
		"threshold_kb": intProp("flag assets larger than this many KB", 250),
		"top_n":        intProp("number of largest chunks to return", 5),
	})
}
func (t *AnalyzeBundleSizeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	threshold := optInt(args, "threshold_kb", 250)
	topN := optInt(args, "top_n", 5)

	analysis, err := t.index.AnalyzeSize(threshold)
	if err != nil {
		return nil, wrapManifestErr(err)
	}
	chunks, err := t.index.Chunks()
	if err != nil {
		return nil, wrapManifestErr(err)
	}

	largest := append([]buildindex.Chunk(nil), chunks...)
	sort.Slice(largest, func(i, j int) bool { return largest[i].Size > largest[j].Size })
	if topN > 0 && len(largest) > topN {
		largest = largest[:topN]
	}

	return map[string]interface{}{
		"analysis":       analysis,
		"largest_chunks": largest,
	}, nil
}

// ResolveMinifiedErrorTool implements resolve_minified_error.
type ResolveMinifiedErrorTool struct{ workflowTools }

func (t *ResolveMinifiedErrorTool) Name() string { return "resolve_minified_error" }
func (t *ResolveMinifiedErrorTool) Description() string {
	return "Resolves a raw minified stack trace to original source, and when url+fragment are also given, runs the full root-cause pipeline against the live page in the same call."
}
func (t *ResolveMinifiedErrorTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"stack"}, map[string]interface{}{
		"stack":    strProp("raw minified stack trace text"),
		"url":      strProp("optional page URL; when given with fragment, also runs error_trace_cause"),
		"fragment": strProp("substring to match against captured console messages, used only when url is given"),
	})
}
func (t *ResolveMinifiedErrorTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	stack, err := requireString(args, "stack")
	if err != nil {
		return nil, err
	}
	url := optString(args, "url", "")
	fragment := optString(args, "fragment", "")

	result := map[string]interface{}{
		"resolved_stack": t.sm.ResolveStack(ctx, stack),
	}

	if url == "" || fragment == "" {
		return result, nil
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	cause := t.reasoner.TraceCause(ctx, buf, fragment)
	if cause.Found {
		result["cause"] = cause
	}
	return result, nil
}
