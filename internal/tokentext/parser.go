package tokentext

import "regexp"

// tokenRe is the wire-format contract: a token is exactly this pattern.
// Unknown type codes or malformed brackets simply never match, so they
// fall through as literal text.
var tokenRe = regexp.MustCompile(`\[(IMG|AUD|MAP|DET|MUS):([^\]]*)\]`)

// Parse splits raw into an ordered, non-overlapping sequence of literal
// runs and token matches. It is total: no input fails, and concatenating
// the segment contents reproduces raw exactly.
func Parse(raw string) []Segment {
	if raw == "" {
		return nil
	}

	matches := tokenRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return []Segment{TextSegment(raw)}
	}

	out := make([]Segment, 0, 2*len(matches)+1)
	pos := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > pos {
			out = append(out, TextSegment(raw[pos:start]))
		}
		out = append(out, NewTokenSegment(Token{
			Type:    TokenType(raw[m[2]:m[3]]),
			Payload: raw[m[4]:m[5]],
			Start:   start,
			End:     end,
		}))
		pos = end
	}
	if pos < len(raw) {
		out = append(out, TextSegment(raw[pos:]))
	}
	return out
}

// Tokens returns only the token matches of raw, in order.
func Tokens(raw string) []Token {
	var out []Token
	for _, seg := range Parse(raw) {
		if seg.IsToken {
			out = append(out, seg.Token)
		}
	}
	return out
}

// Reconstruct concatenates segment contents back into a raw string.
func Reconstruct(segs []Segment) string {
	var n int
	for _, s := range segs {
		n += len(s.Content())
	}
	buf := make([]byte, 0, n)
	for _, s := range segs {
		buf = append(buf, s.Content()...)
	}
	return string(buf)
}
