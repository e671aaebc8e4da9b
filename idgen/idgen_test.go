package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, n := range []int{8, 16, 21, 32} {
		gen := NanoID(n)
		id := gen()
		if len(id) != n {
			t.Errorf("NanoID(%d) produced %q (len %d)", n, id, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	gen := NanoID(64)
	id := gen()
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("NanoID produced out-of-alphabet rune %q in %q", r, id)
		}
	}
}

func TestNanoID_Uniqueness(t *testing.T) {
	gen := NanoID(21)
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate NanoID after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	parsed, err := Parse(id)
	if err != nil {
		t.Fatalf("UUIDv7 produced unparseable ID %q: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Parse round-trip changed ID: %q -> %q", id, parsed)
	}
	// version nibble is the 15th hex digit
	if id[14] != '7' {
		t.Errorf("expected version 7 UUID, got %q", id)
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate UUIDv7 after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("sess_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("expected sess_ prefix, got %q", id)
	}
	if len(id) != len("sess_")+8 {
		t.Errorf("unexpected length for %q", id)
	}
}
