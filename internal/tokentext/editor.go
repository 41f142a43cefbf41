package tokentext

import (
	"unicode"
	"unicode/utf8"
)

// Cursor is a selection over the raw string. Start == End is a plain caret.
// Offsets are byte offsets; after any editor operation neither offset lies
// strictly inside a token span.
type Cursor struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Collapsed reports whether the selection is a plain caret.
func (c Cursor) Collapsed() bool {
	return c.Start == c.End
}

// Editor owns one Document plus its cursor and applies edit intents while
// keeping tokens atomic. One Editor per open entry; callers sharing an
// Editor across goroutines must serialize access themselves.
type Editor struct {
	doc    *Document
	cursor Cursor
}

// NewEditor starts an editing session seeded with raw. The caret begins at
// the end of the text.
func NewEditor(raw string) *Editor {
	return &Editor{
		doc:    NewDocument(raw),
		cursor: Cursor{Start: len(raw), End: len(raw)},
	}
}

// Document returns the current revision.
func (e *Editor) Document() *Document {
	return e.doc
}

// Raw returns the current raw string.
func (e *Editor) Raw() string {
	return e.doc.Raw()
}

// Cursor returns the current selection.
func (e *Editor) Cursor() Cursor {
	return e.cursor
}

// SetSelection moves the selection, clamping out-of-range offsets and
// snapping either end off the interior of a token. Called for every caret
// move, not only after edits: tapping into the middle of a rendered token
// must never leave the caret inside the underlying token text.
func (e *Editor) SetSelection(start, end int) {
	if start > end {
		start, end = end, start
	}
	tokens := e.doc.Tokens()
	n := e.doc.Len()
	e.cursor = Cursor{
		Start: snapCursor(tokens, clamp(start, 0, n)),
		End:   snapCursor(tokens, clamp(end, 0, n)),
	}
}

// InsertToken builds "[TYPE:payload]" and splices it in at the current
// selection, replacing any selected text, then places the caret after the
// inserted run.
func (e *Editor) InsertToken(typ TokenType, payload string) {
	raw, cursor := InsertTokenAt(e.doc.Raw(), typ, payload, e.cursor)
	e.doc = NewDocument(raw)
	e.cursor = Cursor{Start: cursor, End: cursor}
}

// ApplyTextEdit feeds a free text change (typing, IME, paste) through the
// token-protection policy and replaces the document with the result.
func (e *Editor) ApplyTextEdit(newRaw string, changeStart, deletedCount, insertedCount int) {
	raw, cursor := ApplyTextEdit(e.doc.Raw(), newRaw, changeStart, deletedCount, insertedCount)
	e.doc = NewDocument(raw)
	e.cursor = Cursor{Start: cursor, End: cursor}
}

// InsertTokenAt is the pure insert transform. The selection is clamped to
// the raw bounds rather than rejected. A single space is added on either
// side where the token would otherwise touch a non-whitespace character,
// so tokens never fuse with surrounding words; string boundaries count as
// whitespace-adjacent. The returned cursor sits just past the inserted run
// (including any trailing space), so sequential inserts compose left to
// right.
func InsertTokenAt(raw string, typ TokenType, payload string, sel Cursor) (string, int) {
	start := clamp(sel.Start, 0, len(raw))
	end := clamp(sel.End, 0, len(raw))
	if start > end {
		start, end = end, start
	}

	before := raw[:start]
	after := raw[end:]

	prefix := ""
	if r, _ := utf8.DecodeLastRuneInString(before); before != "" && !unicode.IsSpace(r) {
		prefix = " "
	}
	suffix := ""
	if r, _ := utf8.DecodeRuneInString(after); after != "" && !unicode.IsSpace(r) {
		suffix = " "
	}

	inserted := prefix + BuildToken(typ, payload) + suffix
	return before + inserted + after, len(before) + len(inserted)
}

// ApplyTextEdit is the pure free-edit transform. A pure deletion whose
// range intersects any token of the previous text is expanded to the union
// of the range and every intersecting token span, so tokens are removed
// whole or not at all; the caret lands at the expanded range start. Every
// other edit is accepted verbatim with the caret after the inserted run,
// snapped off the interior of any token the edit completed.
// The result is always reparsed from scratch by the caller constructing a
// Document, never patched incrementally.
func ApplyTextEdit(prevRaw, newRaw string, changeStart, deletedCount, insertedCount int) (string, int) {
	if insertedCount == 0 && deletedCount > 0 {
		delStart := clamp(changeStart, 0, len(prevRaw))
		delEnd := clamp(changeStart+deletedCount, 0, len(prevRaw))

		expStart, expEnd, hit := delStart, delEnd, false
		for _, t := range Tokens(prevRaw) {
			if !rangesIntersect(delStart, delEnd, t.Start, t.End) {
				continue
			}
			hit = true
			if t.Start < expStart {
				expStart = t.Start
			}
			if t.End > expEnd {
				expEnd = t.End
			}
		}
		if hit {
			return prevRaw[:expStart] + prevRaw[expEnd:], expStart
		}
	}
	return newRaw, NormalizeCursor(newRaw, changeStart+insertedCount)
}

// NormalizeCursor snaps a caret position off the interior of any token in
// raw: a position strictly between a token's bounds moves to the nearer
// boundary, ties going to the start. Positions outside every token are
// returned unchanged apart from clamping.
func NormalizeCursor(raw string, pos int) int {
	return snapCursor(Tokens(raw), clamp(pos, 0, len(raw)))
}

func snapCursor(tokens []Token, pos int) int {
	for _, t := range tokens {
		if pos > t.Start && pos < t.End {
			if pos-t.Start <= t.End-pos {
				return t.Start
			}
			return t.End
		}
	}
	return pos
}

func rangesIntersect(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
