package crawler

import (
	"regexp"
	"strings"
)

// numberPattern matches plain integers, decimals and decimals starting with
// a dot. Thousands separators split a number into several tokens.
var numberPattern = regexp.MustCompile(`([0-9]*\.?[0-9]+)`)

// NumberTokens returns every numeric token in text, in order of appearance.
func NumberTokens(text string) []string {
	return numberPattern.FindAllString(text, -1)
}

// Canonicalize turns a numeric token into its canonical digit string:
// dots are removed, then trailing zeros, then leading zeros.
//
//	"12300" -> "123"
//	"0.0123" -> "123"
//	"0.0" -> ""
//
// The result never starts or ends with '0' and may be empty.
func Canonicalize(raw string) string {
	digits := strings.ReplaceAll(raw, ".", "")
	digits = strings.TrimRight(digits, "0")
	return strings.TrimLeft(digits, "0")
}
