package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString generates a SHA1 hash of a string
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// ShortHash returns the first n hex characters of HashString(s)
func ShortHash(s string, n int) string {
	h := HashString(s)
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[:n]
}
