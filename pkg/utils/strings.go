package utils

import (
	"sort"
	"strings"
)

// ContainsAny checks if the text contains any of the given keywords
func ContainsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// SplitTerms splits a comma-separated list into trimmed, lower-cased, non-empty terms.
// Order is preserved and duplicates are kept.
func SplitTerms(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}

// CanonicalList returns the sorted, de-duplicated terms of a comma-separated list
// joined by commas. Two lists with the same effective members map to the same string.
func CanonicalList(s string) string {
	terms := SplitTerms(s)
	sort.Strings(terms)
	out := terms[:0]
	for i, t := range terms {
		if i > 0 && t == terms[i-1] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// Dedupe removes repeated values keeping first occurrences
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
