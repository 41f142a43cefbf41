// Package tokentext implements the inline-token rich-text model: a scheme
// for embedding typed, atomic references (photos, audio, map locations,
// activity-detail backlinks, music) inside a single persisted string, plus
// the edit operations that keep that encoding intact.
//
// A token is the exact pattern `[TYPE:payload]` where TYPE is one of the
// closed set below and payload is any run of characters excluding `]`.
// Anything bracket-shaped that does not match degrades to literal text.
package tokentext

import "fmt"

// TokenType identifies the kind of inline reference a token carries.
type TokenType string

const (
	TokenImage  TokenType = "IMG" // payload: media URI
	TokenAudio  TokenType = "AUD" // payload: media URI
	TokenMap    TokenType = "MAP" // payload: "<lat>,<lon>" with optional "|<label>"
	TokenDetail TokenType = "DET" // payload: detail item id
	TokenMusic  TokenType = "MUS" // payload: "<videoId>|<url-encoded title>"
)

// TokenTypes lists every known type code in grammar order.
var TokenTypes = []TokenType{TokenImage, TokenAudio, TokenMap, TokenDetail, TokenMusic}

// Token is one matched inline reference. Start/End are half-open rune-safe
// byte offsets into the raw string covering exactly "[TYPE:payload]".
type Token struct {
	Type    TokenType `json:"type"`
	Payload string    `json:"payload"`
	Start   int       `json:"start"`
	End     int       `json:"end"`
}

// String reconstructs the literal token substring.
func (t Token) String() string {
	return BuildToken(t.Type, t.Payload)
}

// BuildToken renders the literal token substring for a type and payload.
// The payload must not contain ']'; the parser would stop the token early
// at the first closing bracket otherwise.
func BuildToken(typ TokenType, payload string) string {
	return fmt.Sprintf("[%s:%s]", typ, payload)
}

// Segment is one element of the lossless partition of a raw string: either
// a literal text run or exactly one token. Exactly one of the two views is
// meaningful, discriminated by IsToken.
type Segment struct {
	IsToken bool
	Text    string // literal run; valid when !IsToken
	Token   Token  // valid when IsToken
}

// Content returns the exact substring of the raw text this segment covers.
// Concatenating Content over a parse result reproduces the input verbatim.
func (s Segment) Content() string {
	if s.IsToken {
		return s.Token.String()
	}
	return s.Text
}

// TextSegment builds a literal-run segment.
func TextSegment(text string) Segment {
	return Segment{Text: text}
}

// NewTokenSegment builds a token segment.
func NewTokenSegment(t Token) Segment {
	return Segment{IsToken: true, Token: t}
}
