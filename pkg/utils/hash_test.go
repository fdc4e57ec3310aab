package utils

import "testing"

func TestHashString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple string", input: "hello", expected: "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{name: "Empty string", input: "", expected: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{name: "Sentence", input: "The quick brown fox jumps over the lazy dog", expected: "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := HashString(tt.input); result != tt.expected {
				t.Errorf("Expected hash %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestShortHash(t *testing.T) {
	if got := ShortHash("hello", 12); got != "aaf4c61ddcc5" {
		t.Errorf("ShortHash = %s", got)
	}
	if got := ShortHash("hello", 0); len(got) != 40 {
		t.Errorf("ShortHash with n=0 should return the full hash, got %s", got)
	}
}

func TestHashString_Uniqueness(t *testing.T) {
	inputs := []string{"updates:a", "updates:b", "social:a", "social:a "}
	seen := make(map[string]string)
	for _, input := range inputs {
		h := HashString(input)
		if other, ok := seen[h]; ok {
			t.Errorf("Hash collision detected: %q and %q", input, other)
		}
		seen[h] = input
	}
}

func BenchmarkHashString(b *testing.B) {
	testString := "category=shelter&keywords=water,volunteer&limit=20&sources=all"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		HashString(testString)
	}
}
