package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParse_Success tests splitting of patterns into segments.
func TestParse_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		kinds     []SegmentKind
		wildcards int
	}{
		{"relative wildcard", "*_test.py", []SegmentKind{KindWildcard}, 1},
		{"absolute", "/data/*/x?.txt", []SegmentKind{KindRoot, KindLiteral, KindWildcard, KindWildcard}, 2},
		{"current and parent", "./../src/*.go", []SegmentKind{KindCurrent, KindParent, KindLiteral, KindWildcard}, 1},
		{"repeated separators", "a//b///*", []SegmentKind{KindLiteral, KindLiteral, KindWildcard}, 1},
		{"trailing separator", "dir/", []SegmentKind{KindLiteral}, 0},
		{"literal only", "plain.txt", []SegmentKind{KindLiteral}, 0},
		{"dot prefixed name", ".hidden*", []SegmentKind{KindWildcard}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.raw)
			require.NoError(t, err, "Parse() should not fail")

			kinds := make([]SegmentKind, 0, len(p.Segments))
			for _, s := range p.Segments {
				kinds = append(kinds, s.Kind)
			}

			assert.Equal(t, tt.kinds, kinds, "Segment kinds should match")
			assert.Equal(t, tt.wildcards, p.Wildcards(), "Wildcard count should match")
			assert.Equal(t, tt.raw, p.Raw, "Raw pattern should be kept")
		})
	}
}

// TestParse_Fail tests rejection of unusable patterns.
func TestParse_Fail(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "/", "///", ".", "..", "a/..", "src/.", "a\x00b"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(raw)
			require.ErrorIs(t, err, ErrPatternSyntax, "Parse() should fail with ErrPatternSyntax")
			assert.Nil(t, p, "Parse() should not return a pattern")

			var serr *SyntaxError
			require.ErrorAs(t, err, &serr, "Parse() should return a *SyntaxError")
			assert.Equal(t, raw, serr.Pattern, "SyntaxError should carry the pattern")
		})
	}
}

func segment(t *testing.T, text string) Segment {
	t.Helper()

	p, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, p.Segments, 1)

	return p.Segments[0]
}

// TestSegmentMatch_Success tests matching of names with capture extraction.
func TestSegmentMatch_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segment  string
		name     string
		captures []string
	}{
		{"*_test.py", "foo_test.py", []string{"foo"}},
		{"*.txt", ".txt", []string{""}},
		{"*", "anything", []string{"anything"}},
		{"*", ".hidden", []string{".hidden"}},
		{"*.*", "a.b.c", []string{"a", "b.c"}},
		{"*o", "foo", []string{"fo"}},
		{"f**r", "foobar", []string{"", "ooba"}},
		{"?x?", "axb", []string{"a", "b"}},
		{"a*b?c", "aXXbYc", []string{"XX", "Y"}},
		{"*-*-*", "a-b-c-d", []string{"a", "b", "c-d"}},
		{"*ab*", "aab", []string{"a", ""}},
		{"??", "äö", []string{"ä", "ö"}},
		{"plain", "plain", nil},
	}

	for _, tt := range tests {
		t.Run(tt.segment+"/"+tt.name, func(t *testing.T) {
			t.Parallel()

			captures, ok := segment(t, tt.segment).Match(tt.name)
			require.True(t, ok, "Match() should succeed")

			if tt.captures == nil {
				assert.Empty(t, captures, "Literal segments should not capture")
			} else {
				assert.Equal(t, tt.captures, captures, "Captures should match")
			}
		})
	}
}

// TestSegmentMatch_Fail tests names that must not match.
func TestSegmentMatch_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segment string
		name    string
	}{
		{"*_test.py", "bar.py"},
		{"?", ""},
		{"??", "a"},
		{"*.TXT", "file.txt"},
		{"plain", "Plain"},
		{"a*", "ba"},
		{"*a", "ab"},
		{"x?z", "xz"},
	}

	for _, tt := range tests {
		t.Run(tt.segment+"/"+tt.name, func(t *testing.T) {
			t.Parallel()

			captures, ok := segment(t, tt.segment).Match(tt.name)
			assert.False(t, ok, "Match() should fail")
			assert.Nil(t, captures, "Match() should not return captures")
		})
	}
}

// TestSegmentMatch_SpecialSegments tests that navigation segments never match names.
func TestSegmentMatch_SpecialSegments(t *testing.T) {
	t.Parallel()

	p, err := Parse("/./../x")
	require.NoError(t, err)

	for _, s := range p.Segments[:3] {
		_, ok := s.Match(s.Text)
		assert.False(t, ok, "Navigation segments should not match as names")
	}
}

// TestSegmentMatch_CaptureCount tests that every wildcard yields one capture.
func TestSegmentMatch_CaptureCount(t *testing.T) {
	t.Parallel()

	s := segment(t, "*?*?*")

	captures, ok := s.Match("abcdef")
	require.True(t, ok)
	assert.Len(t, captures, s.Wildcards(), "Capture count should equal wildcard count")
	assert.Equal(t, []string{"", "a", "", "b", "cdef"}, captures, "Stars should be lazy from the left")
}
