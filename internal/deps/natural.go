package deps

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NaturalLess orders names case-insensitively, comparing digit runs by
// numeric value so that "json2" sorts before "json10". Names that compare
// equal that way fall back to byte order.
func NaturalLess(a, b string) bool {
	if c := NaturalCompare(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

// NaturalCompare returns -1, 0 or 1.
func NaturalCompare(a, b string) int {
	i, j := 0, 0
	for {
		i = skipSpace(a, i)
		j = skipSpace(b, j)
		if i >= len(a) || j >= len(b) {
			break
		}
		if isDigit(a[i]) && isDigit(b[j]) {
			runA, nextI := digitRun(a, i)
			runB, nextJ := digitRun(b, j)
			if c := compareNumeric(runA, runB); c != 0 {
				return c
			}
			i, j = nextI, nextJ
			continue
		}
		ra, sizeA := utf8.DecodeRuneInString(a[i:])
		rb, sizeB := utf8.DecodeRuneInString(b[j:])
		ra, rb = unicode.ToLower(ra), unicode.ToLower(rb)
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		i += sizeA
		j += sizeB
	}
	switch {
	case i >= len(a) && j >= len(b):
		return 0
	case i >= len(a):
		return -1
	default:
		return 1
	}
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRun(s string, i int) (string, int) {
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[start:i], i
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
