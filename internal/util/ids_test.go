package util

import (
	"strings"
	"testing"
)

func TestNewIDsHavePrefixAndLength(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"doc", NewDocID, "doc_"},
		{"job", NewJobID, "job_"},
		{"view", NewViewID, "view_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Fatalf("expected prefix %q, got %q", tt.prefix, id)
			}
			suffix := strings.TrimPrefix(id, tt.prefix)
			if len(suffix) != 12 {
				t.Fatalf("expected 12 random characters, got %d in %q", len(suffix), id)
			}
			for _, r := range suffix {
				if !strings.ContainsRune(idAlphabet, r) {
					t.Fatalf("character %q outside id alphabet in %q", r, id)
				}
			}
		})
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := NewDocID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
