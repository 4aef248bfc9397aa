package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// IsValidInput reports whether a typed sentence is worth querying:
// non-blank and made of printable runes only.
func IsValidInput(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	for _, r := range input {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// FormatWithCommas renders n with thousands separators.
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
