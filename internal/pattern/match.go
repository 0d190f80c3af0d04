package pattern

// Match tests a name against the segment. The whole name must match. On
// success the captures are returned in the order the wildcards appear in the
// segment, one per wildcard: a '*' captures its (possibly empty) run and a '?'
// captures its single character. Literal segments match only themselves and
// produce no captures.
//
// Each '*' takes the shortest run that still lets the remainder of the segment
// match, resolved from left to right. Comparison is rune-wise and
// case-sensitive.
func (s Segment) Match(name string) ([]string, bool) {
	switch s.Kind {
	case KindLiteral:
		return nil, name == s.Text
	case KindWildcard:
	default:
		return nil, false
	}

	runes := []rune(name)
	starts := make([]int, len(s.tokens))

	ti, ni := 0, 0
	backtrackToken, backtrackName := -1, 0

	for ni < len(runes) {
		if ti < len(s.tokens) {
			switch t := s.tokens[ti]; t.kind {
			case tokenStar:
				starts[ti] = ni
				backtrackToken, backtrackName = ti, ni
				ti++

				continue
			case tokenQuestion:
				starts[ti] = ni
				ti++
				ni++

				continue
			case tokenRune:
				if t.r == runes[ni] {
					starts[ti] = ni
					ti++
					ni++

					continue
				}
			}
		}

		if backtrackToken < 0 {
			return nil, false
		}

		// Grow the most recent star by one character and retry from there.
		backtrackName++
		ti = backtrackToken + 1
		ni = backtrackName
	}

	for ti < len(s.tokens) && s.tokens[ti].kind == tokenStar {
		starts[ti] = ni
		ti++
	}

	if ti != len(s.tokens) {
		return nil, false
	}

	captures := make([]string, 0, s.Wildcards())
	for i, t := range s.tokens {
		switch t.kind {
		case tokenStar:
			end := len(runes)
			if i+1 < len(s.tokens) {
				end = starts[i+1]
			}
			captures = append(captures, string(runes[starts[i]:end]))
		case tokenQuestion:
			captures = append(captures, string(runes[starts[i]:starts[i]+1]))
		case tokenRune:
		}
	}

	return captures, true
}
