package oversea

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Document is a JSON object that preserves key insertion order. Product
// documents are schema-less trees of objects, arrays and scalars; the
// flattener's path addressing depends on objects keeping the order in which
// the source authored them, which map[string]any cannot provide.
//
// Values held by a Document are *Document, []any, string, json.Number, bool
// or nil. Numbers decode as json.Number so that leaf stringification is
// exact.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// ParseDocument decodes a JSON object into a Document.
func ParseDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the value for key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores a value. A new key is appended; an existing key keeps its
// position.
func (d *Document) Set(key string, value any) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes a key if present.
func (d *Document) Delete(key string) {
	if _, exists := d.values[key]; !exists {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for _, k := range d.keys {
		out.Set(k, cloneValue(d.values[k]))
	}
	return out
}

// cloneValue deep-copies any document value.
func cloneValue(v any) any {
	switch val := v.(type) {
	case *Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	default:
		// Scalars are immutable.
		return val
	}
}

// Equal reports whether two documents hold the same keys and deeply equal
// values. Key order is not significant: partition followed by merge changes
// top-level ordering without changing content.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.keys) != len(other.keys) {
		return false
	}
	for _, k := range d.keys {
		ov, ok := other.values[k]
		if !ok || !valueEqual(d.values[k], ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Document:
		bv, ok := b.(*Document)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// UnmarshalJSON decodes a JSON object, preserving key order and keeping
// numbers as json.Number.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return &DocumentError{Message: "invalid JSON payload", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &DocumentError{Message: "payload is not a JSON object"}
	}

	parsed, err := decodeObject(dec)
	if err != nil {
		return &DocumentError{Message: "malformed JSON payload", Cause: err}
	}
	*d = *parsed
	return nil
}

// decodeObject consumes object members up to and including the closing brace.
func decodeObject(dec *json.Decoder) (*Document, error) {
	doc := NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &DocumentError{Message: "object key is not a string"}
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, value)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return doc, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			arr := []any{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, &DocumentError{Message: "unexpected delimiter"}
		}
	default:
		// string, json.Number, bool, nil
		return t, nil
	}
}

// MarshalJSON encodes the document with keys in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeys returns map keys in lexicographic order. Hand-built documents
// occasionally carry plain maps; a fixed order keeps traversal deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
