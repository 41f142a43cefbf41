package mcpserver

// TokenFormatContract describes the canonical inline token format that
// LLM consumers should follow when writing entry bodies.
const TokenFormatContract = `# Dagaz Token Format Contract

Every journal entry body in Dagaz is a plain text string that may embed
inline tokens. This contract defines the only valid token syntax.

## Grammar

` + "```" + `
[TYPE:payload]
` + "```" + `

- TYPE is exactly one of: IMG, AUD, MAP, DET, MUS (uppercase).
- payload is any run of characters except ` + "`" + `]` + "`" + `. It may be empty.
- No whitespace is allowed between the brackets and the type or colon.
- Anything that does not match the grammar exactly is plain text. A
  malformed or unknown-type token is never an error; it simply renders
  literally.

## Token types

| Type | Payload | Meaning |
|------|---------|---------|
| IMG  | media filename | Inline photo, e.g. ` + "`" + `[IMG:walk.jpg]` + "`" + ` |
| AUD  | media filename | Voice recording, e.g. ` + "`" + `[AUD:memo.m4a]` + "`" + ` |
| MAP  | lat,lon or lat,lon|label | Location pin, e.g. ` + "`" + `[MAP:50.1,14.4|Home]` + "`" + ` |
| DET  | detail item ID | Structured detail chip, e.g. ` + "`" + `[DET:exercise]` + "`" + ` |
| MUS  | videoID or videoID|title | Music reference, e.g. ` + "`" + `[MUS:dQw4w9WgXcQ|Never Gonna Give You Up]` + "`" + ` |

## Rules

1. **Place tokens on word boundaries.** Surround a token with single
   spaces when it sits between words. The insert_token tool does this
   automatically; prefer it over writing tokens by hand.
2. **MAP payloads** use a comma between latitude and longitude and an
   optional ` + "`" + `|` + "`" + ` before a free-text label. Only the first ` + "`" + `|` + "`" + ` is
   structural.
3. **MUS payloads** put the video ID before the first ` + "`" + `|` + "`" + ` and a
   URL-encoded title after it.
4. **Media files** referenced by IMG and AUD payloads live in the shared
   ` + "`" + `media/` + "`" + ` directory (flat, no sub-folders) and are served at
   ` + "`" + `/media/filename` + "`" + `. Upload them via the REST API before
   referencing them.
5. **Never nest tokens.** A payload cannot contain another token because
   it cannot contain ` + "`" + `]` + "`" + `.
6. **Encoding** is UTF-8. Token positions are byte offsets into the body.

## Example

` + "```" + `
Started the day at the gym [DET:exercise] then walked along the river.

[IMG:river-morning.jpg]

Recorded a quick thought [AUD:idea.m4a] near [MAP:50.0755,14.4378|Old Town].
Listening to [MUS:dQw4w9WgXcQ|Never%20Gonna%20Give%20You%20Up] on repeat.
` + "```" + `
`
