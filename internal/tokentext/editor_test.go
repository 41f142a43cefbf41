package tokentext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caret(pos int) Cursor {
	return Cursor{Start: pos, End: pos}
}

func TestInsertTokenAt_BetweenWords(t *testing.T) {
	raw, cursor := InsertTokenAt("helloworld", TokenImage, "u", caret(5))
	assert.Equal(t, "hello [IMG:u] world", raw)
	// Caret sits after the trailing normalization space.
	assert.Equal(t, len("hello [IMG:u] "), cursor)
}

func TestInsertTokenAt_AtEndNoTrailingSpace(t *testing.T) {
	raw, cursor := InsertTokenAt("I was here", TokenMap, "50.1,14.4|Home", caret(10))
	assert.Equal(t, "I was here [MAP:50.1,14.4|Home]", raw)
	assert.Equal(t, len(raw), cursor)
}

func TestInsertTokenAt_AtStartNoLeadingSpace(t *testing.T) {
	raw, _ := InsertTokenAt("morning", TokenAudio, "content://rec1", caret(0))
	assert.Equal(t, "[AUD:content://rec1] morning", raw)
}

func TestInsertTokenAt_EmptyText(t *testing.T) {
	raw, cursor := InsertTokenAt("", TokenImage, "u", caret(0))
	assert.Equal(t, "[IMG:u]", raw)
	assert.Equal(t, len(raw), cursor)
}

func TestInsertTokenAt_WhitespaceAdjacentAddsNothing(t *testing.T) {
	raw, _ := InsertTokenAt("hello  world", TokenImage, "u", caret(6))
	assert.Equal(t, "hello [IMG:u] world", raw)

	raw, _ = InsertTokenAt("line\nbreak", TokenImage, "u", caret(5))
	assert.Equal(t, "line\n[IMG:u] break", raw)
}

func TestInsertTokenAt_ReplacesSelection(t *testing.T) {
	raw, cursor := InsertTokenAt("keep REMOVE keep", TokenDetail, "run", Cursor{Start: 5, End: 11})
	assert.Equal(t, "keep [DET:run] keep", raw)
	assert.Equal(t, len("keep [DET:run] "), cursor)
}

func TestInsertTokenAt_ClampsOutOfRange(t *testing.T) {
	raw, _ := InsertTokenAt("ab", TokenImage, "u", Cursor{Start: -3, End: 99})
	assert.Equal(t, "[IMG:u]", raw)

	raw, cursor := InsertTokenAt("ab", TokenImage, "u", caret(50))
	assert.Equal(t, "ab [IMG:u]", raw)
	assert.Equal(t, len(raw), cursor)
}

func TestInsertTokenAt_InvertedSelection(t *testing.T) {
	raw, _ := InsertTokenAt("keep REMOVE keep", TokenDetail, "run", Cursor{Start: 11, End: 5})
	assert.Equal(t, "keep [DET:run] keep", raw)
}

func TestInsertTokenAt_SequentialInsertsCompose(t *testing.T) {
	raw, cursor := InsertTokenAt("note", TokenImage, "a", caret(4))
	raw, cursor = InsertTokenAt(raw, TokenAudio, "b", caret(cursor))
	assert.Equal(t, "note [IMG:a] [AUD:b]", raw)
	assert.Equal(t, len(raw), cursor)

	// Each inserted token parses as its own segment.
	require.Len(t, Tokens(raw), 2)
}

func TestInsertTokenAt_NextToExistingToken(t *testing.T) {
	base := "x [IMG:a]"
	raw, _ := InsertTokenAt(base, TokenAudio, "b", caret(len(base)))
	// ']' is non-whitespace, so a separating space is added.
	assert.Equal(t, "x [IMG:a] [AUD:b]", raw)
}

func TestApplyTextEdit_DeletionInsideTokenRemovesWholeToken(t *testing.T) {
	raw := "Hello [IMG:content://a] world"
	tok := Tokens(raw)[0]

	// Deleting any single character inside the token removes the full span.
	for pos := tok.Start; pos < tok.End; pos++ {
		newRaw := raw[:pos] + raw[pos+1:]
		got, cursor := ApplyTextEdit(raw, newRaw, pos, 1, 0)
		assert.Equal(t, "Hello  world", got, "pos=%d", pos)
		assert.Equal(t, tok.Start, cursor, "pos=%d", pos)
		assert.Empty(t, Tokens(got), "pos=%d", pos)
	}
}

func TestApplyTextEdit_DeletionSpanningMultipleTokens(t *testing.T) {
	raw := "a [IMG:x] b [AUD:y] c"
	first := Tokens(raw)[0]
	second := Tokens(raw)[1]

	// Delete from inside the first token to inside the second.
	delStart := first.Start + 2
	delEnd := second.Start + 2
	newRaw := raw[:delStart] + raw[delEnd:]
	got, cursor := ApplyTextEdit(raw, newRaw, delStart, delEnd-delStart, 0)

	assert.Equal(t, "a  c", got)
	assert.Equal(t, first.Start, cursor)
	assert.Empty(t, Tokens(got))
}

func TestApplyTextEdit_DeletionOutsideTokensVerbatim(t *testing.T) {
	raw := "abc [IMG:x] def"
	newRaw := "bc [IMG:x] def"
	got, cursor := ApplyTextEdit(raw, newRaw, 0, 1, 0)
	assert.Equal(t, newRaw, got)
	assert.Equal(t, 0, cursor)
	require.Len(t, Tokens(got), 1)
}

func TestApplyTextEdit_DeletionTouchingTokenBoundaryOnly(t *testing.T) {
	raw := "ab [IMG:x] cd"
	tok := Tokens(raw)[0]

	// Deleting the space before the token does not intersect its half-open
	// span, so the edit passes through verbatim.
	newRaw := raw[:tok.Start-1] + raw[tok.Start:]
	got, _ := ApplyTextEdit(raw, newRaw, tok.Start-1, 1, 0)
	assert.Equal(t, newRaw, got)
	require.Len(t, Tokens(got), 1)
}

func TestApplyTextEdit_PureInsertionVerbatim(t *testing.T) {
	raw := "hello"
	newRaw := "hel!lo"
	got, cursor := ApplyTextEdit(raw, newRaw, 3, 0, 1)
	assert.Equal(t, newRaw, got)
	assert.Equal(t, 4, cursor)
}

func TestApplyTextEdit_ReplacementVerbatim(t *testing.T) {
	// A replacement (delete+insert in one change) is not a pure deletion;
	// it is accepted verbatim and the reparse degrades any token remnant
	// to literal text.
	raw := "x [IMG:abc] y"
	newRaw := "x [IMG:aQc] y"
	got, cursor := ApplyTextEdit(raw, newRaw, 8, 1, 1)
	assert.Equal(t, newRaw, got)
	// The caret lands after the inserted rune and is then snapped off the
	// token interior, here to the nearer end.
	assert.Equal(t, Tokens(got)[0].End, cursor)
}

func TestApplyTextEdit_InsertionCompletingTokenSnapsCursor(t *testing.T) {
	// Typing the missing bracket turns the fragment into a real token; the
	// caret must not stay inside it.
	got, cursor := ApplyTextEdit("x AUD:y]", "x [AUD:y]", 2, 0, 1)
	assert.Equal(t, "x [AUD:y]", got)

	tok := Tokens(got)
	require.Len(t, tok, 1)
	assert.Equal(t, tok[0].Start, cursor)
}

func TestApplyTextEdit_NoPartialTokenSurvivesDeletion(t *testing.T) {
	raw := "pre [MUS:vid|Title%20Here] post"
	tok := Tokens(raw)[0]

	for delStart := tok.Start - 2; delStart < tok.End; delStart++ {
		if delStart < 0 {
			continue
		}
		for delLen := 1; delLen <= 4; delLen++ {
			delEnd := delStart + delLen
			if delEnd > len(raw) {
				break
			}
			if !rangesIntersect(delStart, delEnd, tok.Start, tok.End) {
				continue
			}
			newRaw := raw[:delStart] + raw[delEnd:]
			got, _ := ApplyTextEdit(raw, newRaw, delStart, delLen, 0)
			assert.Empty(t, Tokens(got), "delStart=%d delLen=%d", delStart, delLen)
			assert.NotContains(t, got, "[MUS:", "delStart=%d delLen=%d", delStart, delLen)
		}
	}
}

func TestNormalizeCursor_SnapsToNearestBoundary(t *testing.T) {
	raw := "ab [IMG:xyz] cd"
	tok := Tokens(raw)[0]

	for pos := tok.Start + 1; pos < tok.End; pos++ {
		got := NormalizeCursor(raw, pos)
		if pos-tok.Start < tok.End-pos {
			assert.Equal(t, tok.Start, got, "pos=%d", pos)
		} else if pos-tok.Start > tok.End-pos {
			assert.Equal(t, tok.End, got, "pos=%d", pos)
		} else {
			// Equidistant snaps to the start.
			assert.Equal(t, tok.Start, got, "pos=%d", pos)
		}
	}
}

func TestNormalizeCursor_TieGoesToStart(t *testing.T) {
	// "[IMG:xy]" has even length, so an exact midpoint exists.
	raw := "[IMG:xy]"
	tok := Tokens(raw)[0]
	mid := (tok.Start + tok.End) / 2
	assert.Equal(t, tok.Start, NormalizeCursor(raw, mid))
}

func TestNormalizeCursor_BoundariesAndOutsideUnchanged(t *testing.T) {
	raw := "ab [IMG:xyz] cd"
	tok := Tokens(raw)[0]

	assert.Equal(t, tok.Start, NormalizeCursor(raw, tok.Start))
	assert.Equal(t, tok.End, NormalizeCursor(raw, tok.End))
	assert.Equal(t, 0, NormalizeCursor(raw, 0))
	assert.Equal(t, len(raw), NormalizeCursor(raw, len(raw)))
	assert.Equal(t, 1, NormalizeCursor(raw, 1))
}

func TestNormalizeCursor_Clamps(t *testing.T) {
	assert.Equal(t, 0, NormalizeCursor("abc", -5))
	assert.Equal(t, 3, NormalizeCursor("abc", 99))
}

func TestEditor_Lifecycle(t *testing.T) {
	e := NewEditor("seed text")
	assert.Equal(t, "seed text", e.Raw())
	assert.Equal(t, caret(9), e.Cursor())

	e.InsertToken(TokenImage, "content://a")
	assert.Equal(t, "seed text [IMG:content://a]", e.Raw())
	assert.True(t, e.Cursor().Collapsed())
	assert.Equal(t, e.Document().Len(), e.Cursor().Start)

	// Free typing after the token.
	newRaw := e.Raw() + "!"
	e.ApplyTextEdit(newRaw, e.Document().Len(), 0, 1)
	assert.Equal(t, "seed text [IMG:content://a]!", e.Raw())
}

func TestEditor_SetSelectionSnapsAndClamps(t *testing.T) {
	e := NewEditor("ab [IMG:xyz] cd")
	tok := e.Document().Tokens()[0]

	e.SetSelection(tok.Start+1, tok.Start+1)
	assert.Equal(t, caret(tok.Start), e.Cursor())

	e.SetSelection(tok.End-1, tok.End-1)
	assert.Equal(t, caret(tok.End), e.Cursor())

	e.SetSelection(-10, 999)
	assert.Equal(t, Cursor{Start: 0, End: e.Document().Len()}, e.Cursor())

	// Inverted arguments are reordered.
	e.SetSelection(5, 2)
	assert.LessOrEqual(t, e.Cursor().Start, e.Cursor().End)
}

func TestEditor_DeleteIntoTokenSnapsOut(t *testing.T) {
	e := NewEditor("x [AUD:rec] y")
	tok := e.Document().Tokens()[0]

	// Simulate a backspace landing inside the token.
	pos := tok.End - 1
	newRaw := e.Raw()[:pos-1] + e.Raw()[pos:]
	e.ApplyTextEdit(newRaw, pos-1, 1, 0)

	assert.Equal(t, "x  y", e.Raw())
	assert.Equal(t, caret(tok.Start), e.Cursor())
}

func TestEditor_RawAlwaysReparseable(t *testing.T) {
	// Any sequence of operations leaves a raw string whose parse
	// round-trips exactly.
	e := NewEditor("")
	e.InsertToken(TokenImage, "a")
	e.ApplyTextEdit(e.Raw()+" tail", e.Document().Len(), 0, 5)
	e.InsertToken(TokenMap, "1,2|spot")
	e.ApplyTextEdit(strings.Replace(e.Raw(), "tail", "til", 1), 8, 4, 3)

	assert.Equal(t, e.Raw(), Reconstruct(e.Document().Segments()))
}
