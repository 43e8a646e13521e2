package mcp

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/config"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/sourcemap"
)

// networkTools bundles the IL dependencies every network_* tool shares: a
// scoped page acquisition that returns the session's Event Buffer.
type networkTools struct {
	sessions *browser.SessionManager
	il       *instrumentation.Manager
	sm       *sourcemap.Cache
	cfg      config.DispatcherConfig
}

func (n networkTools) open(ctx context.Context, url string) (*instrumentation.Buffers, func(), error) {
	_, buf, release, err := openScoped(ctx, n.sessions, n.il, url)
	if err != nil {
		return nil, func() {}, dispatcher.FromDomainError(err)
	}
	return buf, release, nil
}

func globToRegexp(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	return regexp.MustCompile("^" + quoted + "$")
}

func findNetworkEvent(buf *instrumentation.Buffers, requestID string) (instrumentation.NetworkEvent, bool) {
	for _, ev := range buf.Network.Snapshot() {
		if ev.ID == requestID {
			return ev, true
		}
	}
	return instrumentation.NetworkEvent{}, false
}

// NetworkGetRequestsTool implements network_get_requests.
type NetworkGetRequestsTool struct{ networkTools }

func (t *NetworkGetRequestsTool) Name() string { return "network_get_requests" }
func (t *NetworkGetRequestsTool) Description() string {
	return "Lists captured network requests for a page, ordered by start time, with cursor-based pagination."
}
func (t *NetworkGetRequestsTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url"}, map[string]interface{}{
		"url":    strProp("page URL to navigate to and observe"),
		"limit":  intProp("maximum number of requests to return", 20),
		"cursor": strProp("pagination cursor from a previous call's next_cursor"),
	})
}
func (t *NetworkGetRequestsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	limit := optInt(args, "limit", t.cfg.PageSize())
	cursor := optString(args, "cursor", "")

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	events := buf.Network.Snapshot()
	sort.SliceStable(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	page := dispatcher.Paginate(events, limit, cursor)
	kept, trunc := dispatcher.CapByChars(page.Items, t.cfg.CharCap())

	return map[string]interface{}{
		"requests":    kept,
		"next_cursor": page.NextCursor,
		"truncation":  trunc,
	}, nil
}

// NetworkGetByURLTool implements network_get_by_url.
type NetworkGetByURLTool struct{ networkTools }

func (t *NetworkGetByURLTool) Name() string { return "network_get_by_url" }
func (t *NetworkGetByURLTool) Description() string {
	return "Filters captured network requests by a glob pattern against the request URL (e.g. \"/api/users/*\")."
}
func (t *NetworkGetByURLTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "pattern"}, map[string]interface{}{
		"url":     strProp("page URL to navigate to and observe"),
		"pattern": strProp("glob pattern matched against each request's URL, '*' as wildcard"),
		"limit":   intProp("maximum number of requests to return", 20),
		"cursor":  strProp("pagination cursor from a previous call's next_cursor"),
	})
}
func (t *NetworkGetByURLTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	pattern, err := requireString(args, "pattern")
	if err != nil {
		return nil, err
	}
	limit := optInt(args, "limit", t.cfg.PageSize())
	cursor := optString(args, "cursor", "")

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	re := globToRegexp(pattern)
	var matched []instrumentation.NetworkEvent
	for _, ev := range buf.Network.Snapshot() {
		if re.MatchString(ev.URL) {
			matched = append(matched, ev)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Seq < matched[j].Seq })

	page := dispatcher.Paginate(matched, limit, cursor)
	kept, trunc := dispatcher.CapByChars(page.Items, t.cfg.CharCap())

	return map[string]interface{}{
		"requests":    kept,
		"next_cursor": page.NextCursor,
		"truncation":  trunc,
	}, nil
}

// NetworkGetTimingTool implements network_get_timing.
type NetworkGetTimingTool struct{ networkTools }

func (t *NetworkGetTimingTool) Name() string { return "network_get_timing" }
func (t *NetworkGetTimingTool) Description() string {
	return "Returns the timing breakdown (dns/connect/ssl/ttfb/download/total) for one captured request."
}
func (t *NetworkGetTimingTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "request_id"}, map[string]interface{}{
		"url":        strProp("page URL to navigate to and observe"),
		"request_id": strProp("the request's id, as returned by network_get_requests"),
	})
}
func (t *NetworkGetTimingTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	requestID, err := requireString(args, "request_id")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	ev, ok := findNetworkEvent(buf, requestID)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured request with id "+requestID, "list requests first with network_get_requests to find a valid id")
	}
	return ev.Timings, nil
}

// NetworkTraceInitiatorTool implements network_trace_initiator.
type NetworkTraceInitiatorTool struct{ networkTools }

func (t *NetworkTraceInitiatorTool) Name() string { return "network_trace_initiator" }
func (t *NetworkTraceInitiatorTool) Description() string {
	return "Resolves a request's initiator call stack back to original source via the Source Map Cache."
}
func (t *NetworkTraceInitiatorTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "request_id"}, map[string]interface{}{
		"url":        strProp("page URL to navigate to and observe"),
		"request_id": strProp("the request's id, as returned by network_get_requests"),
	})
}
func (t *NetworkTraceInitiatorTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	requestID, err := requireString(args, "request_id")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	ev, ok := findNetworkEvent(buf, requestID)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured request with id "+requestID, "list requests first with network_get_requests to find a valid id")
	}
	if ev.InitiatorStack == "" {
		return map[string]interface{}{"initiator_type": ev.InitiatorType, "resolved": nil}, nil
	}
	resolved := t.sm.ResolveStack(ctx, ev.InitiatorStack)
	return map[string]interface{}{"initiator_type": ev.InitiatorType, "resolved": resolved}, nil
}

// NetworkGetHeadersTool implements network_get_headers.
type NetworkGetHeadersTool struct{ networkTools }

func (t *NetworkGetHeadersTool) Name() string { return "network_get_headers" }
func (t *NetworkGetHeadersTool) Description() string {
	return "Returns request/response headers for one captured request (subject to the session's redaction policy)."
}
func (t *NetworkGetHeadersTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "request_id"}, map[string]interface{}{
		"url":        strProp("page URL to navigate to and observe"),
		"request_id": strProp("the request's id, as returned by network_get_requests"),
	})
}
func (t *NetworkGetHeadersTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	requestID, err := requireString(args, "request_id")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	ev, ok := findNetworkEvent(buf, requestID)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured request with id "+requestID, "list requests first with network_get_requests to find a valid id")
	}
	return map[string]interface{}{
		"request_headers":  ev.RequestHeaders,
		"response_headers": ev.ResponseHeaders,
	}, nil
}

// NetworkGetBodyTool implements network_get_body.
type NetworkGetBodyTool struct{ networkTools }

func (t *NetworkGetBodyTool) Name() string { return "network_get_body" }
func (t *NetworkGetBodyTool) Description() string {
	return "Returns request/response bodies for one captured request, truncated with an explicit marker if they exceed the per-response body cap."
}
func (t *NetworkGetBodyTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "request_id"}, map[string]interface{}{
		"url":        strProp("page URL to navigate to and observe"),
		"request_id": strProp("the request's id, as returned by network_get_requests"),
	})
}
func (t *NetworkGetBodyTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	requestID, err := requireString(args, "request_id")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	ev, ok := findNetworkEvent(buf, requestID)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured request with id "+requestID, "list requests first with network_get_requests to find a valid id")
	}
	return map[string]interface{}{
		"request_body":   ev.RequestBody,
		"response_body":  ev.ResponseBody,
		"body_truncated": ev.BodyTruncated,
	}, nil
}


