package reasoner

import (
	"strings"
	"testing"
)

func TestClassifyTypeError(t *testing.T) {
	kind, conf := classify("TypeError: x is not a function")
	if kind != KindTypeError || conf != High {
		t.Fatalf("got %s/%s", kind, conf)
	}
}

func TestClassifyReferenceError(t *testing.T) {
	kind, conf := classify("ReferenceError: foo is not defined")
	if kind != KindReferenceError || conf != High {
		t.Fatalf("got %s/%s", kind, conf)
	}
}

func TestClassifyNetwork(t *testing.T) {
	kind, conf := classify("TypeError: Failed to fetch")
	if kind != KindNetwork || conf != High {
		t.Fatalf("got %s/%s", kind, conf)
	}
}

func TestClassifyRendering(t *testing.T) {
	kind, conf := classify("Error: failed to render component Foo")
	if kind != KindRendering || conf != Medium {
		t.Fatalf("got %s/%s", kind, conf)
	}
}

func TestClassifyGeneric(t *testing.T) {
	kind, conf := classify("Disk full")
	if kind != KindGeneric || conf != Low {
		t.Fatalf("got %s/%s", kind, conf)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Contains both "undefined" (TypeError rule) and "fetch" (Network
	// rule); TypeError is listed first in the rule table and must win.
	kind, _ := classify("fetch response is undefined")
	if kind != KindTypeError {
		t.Fatalf("expected TypeError to win priority, got %s", kind)
	}
}

func TestRecommendNetworkWithContext(t *testing.T) {
	recs := recommend(KindNetwork, true)
	if len(recs) < 2 {
		t.Fatal("expected multiple recommendations")
	}
	found := false
	for _, r := range recs {
		if strings.Contains(r, "correlated") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a recommendation referencing correlated network context")
	}
}

func TestRecommendNetworkWithoutContext(t *testing.T) {
	recs := recommend(KindNetwork, false)
	found := false
	for _, r := range recs {
		if strings.Contains(r, "No correlated") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a recommendation noting the absence of network correlation")
	}
}
