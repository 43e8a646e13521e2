package component

import "testing"

func TestUnsupportedHelper(t *testing.T) {
	u := unsupported("no hook")
	if u.Supported {
		t.Fatal("expected Supported=false")
	}
	if u.Reason != "no hook" {
		t.Fatalf("unexpected reason: %q", u.Reason)
	}
}

func TestFrameworkConstants(t *testing.T) {
	names := map[string]bool{React: true, Vue: true, Angular: true, Svelte: true, DOM: true}
	if len(names) != 5 {
		t.Fatalf("expected 5 distinct framework constants, got %d", len(names))
	}
}
