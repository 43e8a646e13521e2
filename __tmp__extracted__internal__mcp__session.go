package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
	"github.com/frontendintel/fie-mcp-server/internal/dispatcher"
	"github.com/frontendintel/fie-mcp-server/internal/instrumentation"
)

// openScoped acquires a fresh, isolated page at url for the lifetime of one
// tool call: BSM acquires the page, IL attaches collectors and settles,
// then the caller's component runs against the live page and its Event
// Buffer (spec.md §2's control flow). The returned release func must be
// deferred immediately by the caller.
func openScoped(ctx context.Context, sessions *browser.SessionManager, il *instrumentation.Manager, url string) (*rod.Page, *instrumentation.Buffers, func(), error) {
	meta, err := sessions.CreateSession(ctx, url)
	if err != nil {
		return nil, nil, func() {}, err
	}
	page, _ := sessions.Page(meta.ID)
	buf, _ := il.Get(meta.ID)
	release := func() { sessions.Release(meta.ID) }
	return page, buf, release, nil
}

// ensureSelectorExists returns a NotFound Failure, echoing the queried
// selector, when selector matches nothing in the live DOM (spec.md §8's
// "Selector not found -> NotFound with the queried selector echoed back").
// An empty selector (root-scoped call) always passes.
func ensureSelectorExists(page *rod.Page, selector string) error {
	if selector == "" {
		return nil
	}
	els, err := page.Timeout(2 * time.Second).Elements(selector)
	if err != nil || len(els) == 0 {
		return dispatcher.NewFailure(dispatcher.NotFound, fmt.Sprintf("no element matches selector %q", selector), "call component_tree first to confirm the selector exists in the live DOM")
	}
	return nil
}


