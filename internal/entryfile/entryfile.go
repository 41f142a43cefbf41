// Package entryfile reads and writes the on-disk entry format: YAML
// frontmatter (between leading --- delimiters) carrying the entry
// metadata, followed by the raw body text with inline tokens.
package entryfile

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/tokentext"
)

// Meta is the frontmatter block of an entry file.
type Meta struct {
	ID        string                   `yaml:"id"`
	Title     string                   `yaml:"title"`
	Mood      string                   `yaml:"mood,omitempty"`
	CreatedAt time.Time                `yaml:"created_at"`
	Details   []models.DetailSelection `yaml:"details,omitempty"`
}

// Result holds the output of parsing an entry file.
type Result struct {
	Meta Meta
	Body string
}

// TokenTypes returns the distinct token type codes present in the body,
// in first-appearance order. Used by the index to answer "entries with a
// photo" style filters without reparsing bodies.
func (r *Result) TokenTypes() []string {
	seen := make(map[tokentext.TokenType]struct{})
	var out []string
	for _, t := range tokentext.Tokens(r.Body) {
		if _, dup := seen[t.Type]; dup {
			continue
		}
		seen[t.Type] = struct{}{}
		out = append(out, string(t.Type))
	}
	return out
}

// DetailRefs returns the ids of detail items referenced by DET tokens in
// the body, deduplicated in appearance order.
func (r *Result) DetailRefs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tokentext.Tokens(r.Body) {
		if t.Type != tokentext.TokenDetail || t.Payload == "" {
			continue
		}
		if _, dup := seen[t.Payload]; dup {
			continue
		}
		seen[t.Payload] = struct{}{}
		out = append(out, t.Payload)
	}
	return out
}

// Parse splits raw entry file bytes into frontmatter and body. Missing or
// invalid frontmatter is not an error: the whole content becomes the body
// and the metadata stays zero, so a hand-edited or damaged file never
// becomes unreadable.
func Parse(data []byte) (*Result, error) {
	meta, body := splitFrontmatter(data)
	return &Result{Meta: meta, Body: body}, nil
}

// Marshal renders an entry file: frontmatter block, delimiter, body.
func Marshal(meta Meta, body string) ([]byte, error) {
	fm, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("entryfile: marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

func splitFrontmatter(data []byte) (Meta, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return Meta{}, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter — treat everything as body.
		return Meta{}, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]

	// Strip only the newline terminating the closing delimiter line so a
	// body that itself begins with blank lines round-trips unchanged.
	body := string(afterDelim)
	switch {
	case strings.HasPrefix(body, "\r\n"):
		body = body[2:]
	case strings.HasPrefix(body, "\n"):
		body = body[1:]
	}

	var meta Meta
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		return Meta{}, string(data)
	}
	return meta, body
}
