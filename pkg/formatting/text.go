package formatting

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrNoObject is returned when content holds no balanced JSON object.
var ErrNoObject = errors.New("no JSON object found")

// Clean applies NFKC normalization and replaces no-break spaces, other
// space separators, and invisible format characters with a plain space.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return r
		case unicode.Is(unicode.Zs, r), unicode.Is(unicode.Cf, r):
			return ' '
		}
		return r
	}, s)
}

// ExtractObject returns the first balanced {...} span in content.
// Braces inside JSON string literals are ignored. Prose and code fences
// around the object are tolerated.
func ExtractObject(content string) (string, error) {
	for start := strings.IndexByte(content, '{'); start >= 0; {
		if end := matchBrace(content, start); end > start {
			return content[start : end+1], nil
		}

		next := strings.IndexByte(content[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoObject
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(content string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		c := content[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
