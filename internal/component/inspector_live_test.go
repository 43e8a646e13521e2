package component

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// TestLiveInspectorDOMFallback exercises the DOM-heuristic degradation path
// against a real headless page with no framework present.
func TestLiveInspectorDOMFallback(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping live browser tests (SKIP_LIVE_TESTS set)")
	}

	url := launcher.New().Headless(true).MustLaunch()
	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer browser.Close()

	page := browser.MustPage("data:text/html,<div id=\"app\"><span class=\"label\">hi</span></div>")
	defer page.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	insp := New(page, nil)

	framework := DetectFramework(ctx, page, "#app")
	if framework != DOM {
		t.Fatalf("expected dom fallback, got %q", framework)
	}

	nodes, err := insp.Tree(ctx, "#app", 3, true)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Framework != DOM {
		t.Fatalf("unexpected tree result: %+v", nodes)
	}
	if len(nodes[0].Children) != 1 {
		t.Fatalf("expected one child span, got %+v", nodes[0].Children)
	}

	_, unsup, err := insp.GetProps(ctx, "#app", false)
	if err != nil {
		t.Fatalf("GetProps: %v", err)
	}
	if unsup.Supported {
		t.Fatal("expected props unsupported for a framework-less DOM node")
	}

	_, unsup, err = insp.GetState(ctx, "#app", false)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if unsup.Supported {
		t.Fatal("expected state unsupported for dom framework")
	}

	matches, err := insp.FindByName(ctx, "span", true)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one span match, got %d", len(matches))
	}
}

// TestLiveInspectorGetSourceNoAnnotation confirms getSource degrades to
// Found=false when the page carries no React debug-source annotation.
func TestLiveInspectorGetSourceNoAnnotation(t *testing.T) {
	if os.Getenv("SKIP_LIVE_TESTS") != "" {
		t.Skip("Skipping live browser tests (SKIP_LIVE_TESTS set)")
	}

	url := launcher.New().Headless(true).MustLaunch()
	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer browser.Close()

	page := browser.MustPage("data:text/html,<div id=\"app\"></div>")
	defer page.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	insp := New(page, nil)
	loc, err := insp.GetSource(ctx, "#app")
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	if loc.Found {
		t.Fatalf("expected Found=false, got %+v", loc)
	}
}
