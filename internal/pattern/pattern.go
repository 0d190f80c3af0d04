// Package pattern implements parsing of wildcard source patterns and the
// anchored, capturing matching of a single path segment against a name.
package pattern

import (
	"path/filepath"
	"strings"
)

// SegmentKind describes how a [Segment] is resolved while walking.
type SegmentKind int

const (
	// KindLiteral is a segment without wildcards, resolved by direct lookup.
	KindLiteral SegmentKind = iota

	// KindWildcard is a segment containing at least one '*' or '?'.
	KindWildcard

	// KindRoot is the filesystem root of an absolute pattern.
	KindRoot

	// KindCurrent is a "." segment.
	KindCurrent

	// KindParent is a ".." segment.
	KindParent
)

const (
	// Star matches any run of zero or more characters within a segment.
	Star = '*'

	// Question matches exactly one character within a segment.
	Question = '?'
)

// Pattern is a parsed wildcard source pattern.
type Pattern struct {
	// Raw is the pattern text as given by the user.
	Raw string

	// Segments are the path segments in walking order.
	Segments []Segment
}

// Segment is one path component of a [Pattern].
type Segment struct {
	Kind SegmentKind
	Text string

	tokens []token
}

type tokenKind int

const (
	tokenRune tokenKind = iota
	tokenStar
	tokenQuestion
)

type token struct {
	kind tokenKind
	r    rune
}

// Parse splits a source pattern into its segments. A pattern must select at
// least one entry, so it may not be empty or consist only of root, "." or ".."
// segments.
func Parse(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, newSyntaxError(raw, 0, "pattern is empty")
	}

	if i := strings.IndexByte(raw, 0); i >= 0 {
		return nil, newSyntaxError(raw, i, "pattern contains a NUL byte")
	}

	p := &Pattern{Raw: raw}

	rest := raw
	if strings.HasPrefix(rest, string(filepath.Separator)) {
		p.Segments = append(p.Segments, Segment{Kind: KindRoot, Text: string(filepath.Separator)})
		rest = strings.TrimLeft(rest, string(filepath.Separator))
	}

	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		p.Segments = append(p.Segments, parseSegment(part))
	}

	if len(p.Segments) == 0 {
		return nil, newSyntaxError(raw, 0, "pattern selects the filesystem root")
	}

	switch p.Segments[len(p.Segments)-1].Kind {
	case KindLiteral, KindWildcard:
	default:
		return nil, newSyntaxError(raw, len(raw)-1, "pattern must end in a file or directory name")
	}

	return p, nil
}

func parseSegment(text string) Segment {
	switch text {
	case ".":
		return Segment{Kind: KindCurrent, Text: text}
	case "..":
		return Segment{Kind: KindParent, Text: text}
	}

	seg := Segment{Kind: KindLiteral, Text: text}
	for _, r := range text {
		switch r {
		case Star:
			seg.Kind = KindWildcard
			seg.tokens = append(seg.tokens, token{kind: tokenStar})
		case Question:
			seg.Kind = KindWildcard
			seg.tokens = append(seg.tokens, token{kind: tokenQuestion})
		default:
			seg.tokens = append(seg.tokens, token{kind: tokenRune, r: r})
		}
	}

	return seg
}

// Wildcards returns the number of captures the pattern produces per match.
func (p *Pattern) Wildcards() int {
	n := 0
	for _, s := range p.Segments {
		n += s.Wildcards()
	}

	return n
}

// Wildcards returns the number of '*' and '?' occurrences in the segment.
func (s Segment) Wildcards() int {
	n := 0
	for _, t := range s.tokens {
		if t.kind != tokenRune {
			n++
		}
	}

	return n
}
