package utils

import (
	"github.com/IMQS/authaus"
)

// Produce a random string of the given length, with every character drawn from alphabet
func RandomString(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	return authaus.RandomString(length, alphabet)
}

// ReplaceAt returns s with the byte at position i replaced by c
func ReplaceAt(s string, i int, c byte) string {
	b := []byte(s)
	b[i] = c
	return string(b)
}

// Count the number of leading positions where a and b hold the same byte
func CommonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// DuplicateChars returns every byte that occurs more than once in s, in order of first repetition
func DuplicateChars(s string) []byte {
	var result []byte
	seen := make(map[byte]bool)
	reported := make(map[byte]bool)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if seen[c] && !reported[c] {
			result = append(result, c)
			reported[c] = true
		}
		seen[c] = true
	}
	return result
}

// OnlyChars reports whether every byte of s is present in alphabet
func OnlyChars(s, alphabet string) bool {
	allowed := make(map[byte]bool)
	for i := 0; i < len(alphabet); i++ {
		allowed[alphabet[i]] = true
	}
	for i := 0; i < len(s); i++ {
		if !allowed[s[i]] {
			return false
		}
	}
	return true
}
