package reasoner

import "testing"

func TestNormalizePatternNumbers(t *testing.T) {
	got := normalizePattern("User ID 12345 not found")
	want := "User ID N not found"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizePatternConsistentAcrossInstances(t *testing.T) {
	a := normalizePattern("User ID 12345 not found")
	b := normalizePattern("User ID 67890 not found")
	c := normalizePattern("User ID 11111 not found")
	if a != b || b != c {
		t.Fatalf("expected identical pattern keys, got %q / %q / %q", a, b, c)
	}
}

func TestNormalizePatternDistinctMessage(t *testing.T) {
	a := normalizePattern("User ID 12345 not found")
	b := normalizePattern("Disk full")
	if a == b {
		t.Fatal("expected distinct pattern keys")
	}
}

func TestNormalizePatternStripsStack(t *testing.T) {
	got := normalizePattern("TypeError: x is not a function\n    at foo (bar.js:1:1)")
	want := "TypeError: x is not a function"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizePatternQuotedStrings(t *testing.T) {
	got := normalizePattern(`Cannot read property "foo" of undefined`)
	want := `Cannot read property "S" of undefined`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizePatternHex(t *testing.T) {
	got := normalizePattern("Invalid pointer 0x1f3a")
	want := "Invalid pointer 0xH"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeWords(t *testing.T) {
	words := normalizeWords("Failed to fetch /api/x")
	if _, ok := words["failed"]; !ok {
		t.Fatal("expected 'failed' token")
	}
	if _, ok := words["fetch"]; !ok {
		t.Fatal("expected 'fetch' token")
	}
}
