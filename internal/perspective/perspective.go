// Package perspective maps a prompt option to a short canned reflection.
package perspective

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed perspectives.json
var perspectivesJSON []byte

type entry struct {
	promptID string
	keys     []string // option ids in file order
	texts    map[string]string
}

// Table is an immutable perspective collection. It is safe for concurrent use.
type Table struct {
	entries []entry
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(perspectivesJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded perspectives are invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse decodes a perspective table of the form
// [{"promptId": "...", "options": {"optionId": "text", ...}}, ...].
// Option order is kept as written.
func Parse(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	t := &Table{}
	for dec.More() {
		e, err := decodeEntry(dec)
		if err != nil {
			return nil, err
		}
		t.entries = append(t.entries, e)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeEntry(dec *json.Decoder) (entry, error) {
	var e entry
	if err := expectDelim(dec, '{'); err != nil {
		return e, err
	}

	for dec.More() {
		field, err := decodeString(dec)
		if err != nil {
			return e, err
		}
		switch field {
		case "promptId":
			if e.promptID, err = decodeString(dec); err != nil {
				return e, err
			}
		case "options":
			if err := decodeOptions(dec, &e); err != nil {
				return e, fmt.Errorf("prompt %q: %w", e.promptID, err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return e, err
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return e, err
	}
	if e.promptID == "" {
		return e, fmt.Errorf("perspective entry missing promptId")
	}
	return e, nil
}

func decodeOptions(dec *json.Decoder, e *entry) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	e.texts = make(map[string]string)
	for dec.More() {
		key, err := decodeString(dec)
		if err != nil {
			return err
		}
		text, err := decodeString(dec)
		if err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		if _, dup := e.texts[key]; !dup {
			e.keys = append(e.keys, key)
		}
		e.texts[key] = text
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding perspectives: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("decoding perspectives: expected %q, got %v", want, tok)
	}
	return nil
}

func decodeString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decoding perspectives: %w", err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("decoding perspectives: expected string, got %v", tok)
	}
	return s, nil
}

func (t *Table) find(promptID string) (entry, bool) {
	for _, e := range t.entries {
		if e.promptID == promptID {
			return e, true
		}
	}
	return entry{}, false
}

// Lookup returns the text for (promptID, optionID).
func (t *Table) Lookup(promptID, optionID string) (string, bool) {
	e, ok := t.find(promptID)
	if !ok {
		return "", false
	}
	text, ok := e.texts[optionID]
	return text, ok
}

// Fallback returns the first option text of the prompt's entry.
func (t *Table) Fallback(promptID string) (string, bool) {
	e, ok := t.find(promptID)
	if !ok || len(e.keys) == 0 {
		return "", false
	}
	return e.texts[e.keys[0]], true
}

// Reveal returns the option's perspective, or the prompt's fallback when the
// option has none.
func (t *Table) Reveal(promptID, optionID string) (string, bool) {
	if text, ok := t.Lookup(promptID, optionID); ok {
		return text, true
	}
	return t.Fallback(promptID)
}

// Has reports whether the option has its own authored perspective.
func (t *Table) Has(promptID, optionID string) bool {
	_, ok := t.Lookup(promptID, optionID)
	return ok
}

func Lookup(promptID, optionID string) (string, bool) { return Default().Lookup(promptID, optionID) }

func Fallback(promptID string) (string, bool) { return Default().Fallback(promptID) }

func Reveal(promptID, optionID string) (string, bool) { return Default().Reveal(promptID, optionID) }
