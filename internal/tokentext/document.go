package tokentext

// Document holds one revision of an entry body: the raw string (the only
// persisted representation) plus a lazily computed segment view. A Document
// never changes after creation; edits produce a new Document.
type Document struct {
	raw    string
	segs   []Segment
	parsed bool
}

// NewDocument wraps raw in a Document. Parsing is deferred until the
// segment view is first requested.
func NewDocument(raw string) *Document {
	return &Document{raw: raw}
}

// Raw returns the persisted string representation.
func (d *Document) Raw() string {
	return d.raw
}

// Len returns the raw length in bytes.
func (d *Document) Len() int {
	return len(d.raw)
}

// Segments returns the cached lossless partition of the raw string.
func (d *Document) Segments() []Segment {
	if !d.parsed {
		d.segs = Parse(d.raw)
		d.parsed = true
	}
	return d.segs
}

// Tokens returns the token matches of the raw string, in order.
func (d *Document) Tokens() []Token {
	var out []Token
	for _, seg := range d.Segments() {
		if seg.IsToken {
			out = append(out, seg.Token)
		}
	}
	return out
}
