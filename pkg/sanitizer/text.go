package sanitizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace, converts the input to NFC and
// drops control characters other than newlines and tabs. Invalid UTF-8
// sequences are replaced with U+FFFD.
func NormalizeText(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// CharCount returns the number of user-perceived characters in s after NFC
// normalisation, so "é" counts once whether it arrived composed or not.
func CharCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
