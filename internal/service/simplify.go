package service

import (
	"strings"
	"unicode"
)

// SimplifyName reduces a name or an input to lower case letters, which is the
// form names are matched in.
func SimplifyName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
	return strings.ToLower(s)
}

func prefixOf(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
