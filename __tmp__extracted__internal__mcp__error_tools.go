package mcp

import (
	"context"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
	"github.com/frontendintel/fie-mcp-server/internal/reasoner"
)

// errorTools bundles the Error Reasoner dependencies every error_* tool
// shares, including an ephemeral session opener for the three tools that
// need live console/network buffers.
type errorTools struct {
	sessions *browser.SessionManager
	il       *instrumentation.Manager
	reasoner *reasoner.Reasoner
}

func (e errorTools) open(ctx context.Context, url string) (*instrumentation.Buffers, func(), error) {
	_, buf, release, err := openScoped(ctx, e.sessions, e.il, url)
	if err != nil {
		return nil, func() {}, dispatcher.FromDomainError(err)
	}
	return buf, release, nil
}

// ErrorResolveStackTool implements error_resolve_stack. It never needs a
// browser: stack resolution is a pure Source Map Cache lookup.
type ErrorResolveStackTool struct{ errorTools }

func (t *ErrorResolveStackTool) Name() string { return "error_resolve_stack" }
func (t *ErrorResolveStackTool) Description() string {
	return "Resolves every frame of an error's stack trace back to original source."
}
func (t *ErrorResolveStackTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"stack"}, map[string]interface{}{
		"stack": strProp("raw stack trace text"),
	})
}
func (t *ErrorResolveStackTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	stack, err := requireString(args, "stack")
	if err != nil {
		return nil, err
	}
	return t.reasoner.ResolveStack(ctx, stack), nil
}

// ErrorGetContextTool implements error_get_context.
type ErrorGetContextTool struct{ errorTools }

func (t *ErrorGetContextTool) Name() string { return "error_get_context" }
func (t *ErrorGetContextTool) Description() string {
	return "Navigates to url, finds the most recent console event matching fragment, and returns console/network events within the correlation window around it."
}
func (t *ErrorGetContextTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "fragment"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and observe"),
		"fragment": strProp("substring to match against captured console messages"),
	})
}
func (t *ErrorGetContextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	fragment, err := requireString(args, "fragment")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	console, network, ok := t.reasoner.GetContext(buf, fragment)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured console event matches "+fragment, "check error_get_similar or the page's console output for the exact wording")
	}
	return map[string]interface{}{"console": console, "network": network}, nil
}

// ErrorTraceCauseTool implements error_trace_cause.
type ErrorTraceCauseTool struct{ errorTools }

func (t *ErrorTraceCauseTool) Name() string { return "error_trace_cause" }
func (t *ErrorTraceCauseTool) Description() string {
	return "Navigates to url and runs the full root-cause pipeline for the most recent console event matching fragment: resolve stack, classify, cluster, correlate, recommend."
}
func (t *ErrorTraceCauseTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "fragment"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and observe"),
		"fragment": strProp("substring to match against captured console messages"),
	})
}
func (t *ErrorTraceCauseTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	fragment, err := requireString(args, "fragment")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	cause := t.reasoner.TraceCause(ctx, buf, fragment)
	if !cause.Found {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no captured console event matches "+fragment, "check error_get_similar or the page's console output for the exact wording")
	}
	return cause, nil
}

// ErrorGetSimilarTool implements error_get_similar.
type ErrorGetSimilarTool struct{ errorTools }

func (t *ErrorGetSimilarTool) Name() string { return "error_get_similar" }
func (t *ErrorGetSimilarTool) Description() string {
	return "Navigates to url and returns the in-session error cluster whose normalized pattern matches fragment, with its occurrence count and time span."
}
func (t *ErrorGetSimilarTool) InputSchema() map[string]interface{} {
	return objectSchema([]string{"url", "fragment"}, map[string]interface{}{
		"url":      strProp("page URL to navigate to and observe"),
		"fragment": strProp("substring to match against captured console messages"),
	})
}
func (t *ErrorGetSimilarTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	fragment, err := requireString(args, "fragment")
	if err != nil {
		return nil, err
	}

	buf, release, err := t.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer release()

	cluster, ok := t.reasoner.GetSimilar(buf, fragment)
	if !ok {
		return nil, dispatcher.NewFailure(dispatcher.NotFound, "no error cluster matches "+fragment, "check error_trace_cause first to confirm the error was captured")
	}
	return cluster, nil
}


