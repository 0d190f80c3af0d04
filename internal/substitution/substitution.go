// Package substitution expands capture tokens in a destination template.
//
// A '#' followed by one or more decimal digits is replaced with the capture of
// that 1-based index. All digits are consumed, so "#12" always refers to the
// twelfth capture. "#{N}" delimits the index from following digits and "##"
// yields a literal '#'. Any other '#', including one ending the template or an
// unterminated or non-numeric brace, is a malformed token.
package substitution

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	tokenMarker = '#'
	openBrace   = '{'
	closeBrace  = '}'
)

// Substitute expands every capture token in dest using captures. It fails
// with a [*TokenIndexError] when a token is malformed, refers to index zero
// or to a capture beyond the end of captures.
func Substitute(dest string, captures []string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(dest))

	for i := 0; i < len(dest); {
		if dest[i] != tokenMarker {
			sb.WriteByte(dest[i])
			i++

			continue
		}

		if i+1 >= len(dest) {
			return "", malformed(dest, i, "", len(captures))
		}

		next := dest[i+1]

		switch {
		case next == tokenMarker:
			sb.WriteByte(tokenMarker)
			i += 2

		case isDigit(next):
			end := i + 1
			for end < len(dest) && isDigit(dest[end]) {
				end++
			}

			capture, err := lookup(dest, i, dest[i+1:end], captures)
			if err != nil {
				return "", err
			}

			sb.WriteString(capture)
			i = end

		case next == openBrace:
			closing := strings.IndexByte(dest[i+2:], closeBrace)
			if closing < 0 {
				return "", malformed(dest, i, dest[i+1:], len(captures))
			}
			if closing == 0 || !allDigits(dest[i+2:i+2+closing]) {
				return "", malformed(dest, i, dest[i+1:i+3+closing], len(captures))
			}

			end := i + 2 + closing
			capture, err := lookup(dest, i, dest[i+2:end], captures)
			if err != nil {
				return "", err
			}

			sb.WriteString(capture)
			i = end + 1

		default:
			_, size := utf8.DecodeRuneInString(dest[i+1:])

			return "", malformed(dest, i, dest[i+1:i+1+size], len(captures))
		}
	}

	return sb.String(), nil
}

func lookup(dest string, offset int, digits string, captures []string) (string, error) {
	index, err := strconv.Atoi(digits)
	if err != nil || index < 1 || index > len(captures) {
		return "", &TokenIndexError{
			Destination: dest,
			Offset:      offset,
			Token:       digits,
			Available:   len(captures),
		}
	}

	return captures[index-1], nil
}

func malformed(dest string, offset int, token string, available int) *TokenIndexError {
	return &TokenIndexError{
		Destination: dest,
		Offset:      offset,
		Token:       token,
		Available:   available,
		Malformed:   true,
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func allDigits(s string) bool {
	for i := range len(s) {
		if !isDigit(s[i]) {
			return false
		}
	}

	return true
}
