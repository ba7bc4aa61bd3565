package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// RichText is a description stored as a JSON text envelope (editor block format).
// Implements sql.Scanner and driver.Valuer. Legacy rows holding plain text are
// wrapped on read, so callers always see an envelope.
type RichText string

type richTextBlock struct {
	Key               string         `json:"key"`
	Text              string         `json:"text"`
	Type              string         `json:"type"`
	Depth             int            `json:"depth"`
	InlineStyleRanges []any          `json:"inlineStyleRanges"`
	EntityRanges      []any          `json:"entityRanges"`
	Data              map[string]any `json:"data"`
}

type richTextEnvelope struct {
	Blocks    []richTextBlock `json:"blocks"`
	EntityMap map[string]any  `json:"entityMap"`
}

// LooksLikeJSON reports whether s already starts like a JSON document.
func LooksLikeJSON(s string) bool {
	t := strings.TrimLeft(s, " \t\r\n")
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
}

// WrapPlainText converts plain text into an envelope with one block per line.
// Values that already look like JSON are returned unchanged with wrapped=false.
func WrapPlainText(s string) (RichText, bool) {
	if s == "" || LooksLikeJSON(s) {
		return RichText(s), false
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	env := richTextEnvelope{
		Blocks:    make([]richTextBlock, 0, len(lines)),
		EntityMap: map[string]any{},
	}
	for i, line := range lines {
		env.Blocks = append(env.Blocks, richTextBlock{
			Key:               fmt.Sprintf("%05x", i),
			Text:              line,
			Type:              "unstyled",
			InlineStyleRanges: []any{},
			EntityRanges:      []any{},
			Data:              map[string]any{},
		})
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return RichText(s), false
	}
	return RichText(raw), true
}

// NewRichText builds an envelope from plain text.
func NewRichText(plain string) RichText {
	rt, _ := WrapPlainText(plain)
	return rt
}

// PlainText returns the block texts joined by newlines.
// A value that is not a valid envelope is returned as is.
func (r RichText) PlainText() string {
	if r == "" {
		return ""
	}
	var env richTextEnvelope
	dec := json.NewDecoder(bytes.NewReader([]byte(r)))
	if err := dec.Decode(&env); err != nil {
		return string(r)
	}
	texts := make([]string, 0, len(env.Blocks))
	for _, b := range env.Blocks {
		texts = append(texts, b.Text)
	}
	return strings.Join(texts, "\n")
}

// IsEmpty reports whether the envelope carries no visible text.
func (r RichText) IsEmpty() bool {
	return strings.TrimSpace(r.PlainText()) == ""
}

// Scan implements sql.Scanner.
func (r *RichText) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*r = ""
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("unsupported type for RichText: %T", src)
	}
	*r, _ = WrapPlainText(s)
	return nil
}

// Value implements driver.Valuer.
func (r RichText) Value() (driver.Value, error) {
	if r == "" {
		return nil, nil
	}
	return string(r), nil
}
