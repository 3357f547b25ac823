package triples

import (
	"bytes"
	"encoding/json"
)

// Shape names the branch of the normalization cascade that matched, for
// metrics and logging.
type Shape string

const (
	ShapeArray        Shape = "array"
	ShapeTriplesKey   Shape = "triples_key"
	ShapeNumberedDict Shape = "numbered_dict"
	ShapeSingleNested Shape = "single_nested"
	ShapeSingleObject Shape = "single_object"
	ShapeEmpty        Shape = "empty"
)

// Normalize coerces an arbitrary JSON value into triple rows. It never
// fails: missing fields become empty strings, unrecognized shapes become
// zero rows. When includeCategory is false the category field is dropped
// from every row. Same input and flag always yield the same output.
func Normalize(raw json.RawMessage, includeCategory bool) []Triple {
	rows, _ := NormalizeShape(raw, includeCategory)
	return rows
}

// NormalizeShape is Normalize plus the cascade branch that matched.
//
// Resolution order, first match wins:
//  1. array: each element is one triple
//  2. object with a "triples" key holding an array: use that array
//  3. object whose every key is a numeric string: implicitly-ordered
//     array, iterated in document key order
//  4. object with exactly one entry whose value is an array: use it
//  5. any other object is a single triple; anything else is zero rows
func NormalizeShape(raw json.RawMessage, includeCategory bool) ([]Triple, Shape) {
	elems, shape := resolveRows(raw)
	if len(elems) == 0 {
		return []Triple{}, shape
	}
	out := make([]Triple, 0, len(elems))
	for _, e := range elems {
		out = append(out, coerceTriple(e, includeCategory))
	}
	return out, shape
}

func resolveRows(raw json.RawMessage) ([]json.RawMessage, Shape) {
	switch firstByte(raw) {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, ShapeEmpty
		}
		return elems, ShapeArray
	case '{':
		entries, ok := objectEntries(raw)
		if !ok {
			return nil, ShapeEmpty
		}
		for _, e := range entries {
			if e.key == "triples" && firstByte(e.val) == '[' {
				var elems []json.RawMessage
				if err := json.Unmarshal(e.val, &elems); err == nil {
					return elems, ShapeTriplesKey
				}
			}
		}
		if allNumericKeys(entries) {
			elems := make([]json.RawMessage, 0, len(entries))
			for _, e := range entries {
				elems = append(elems, e.val)
			}
			return elems, ShapeNumberedDict
		}
		if len(entries) == 1 && firstByte(entries[0].val) == '[' {
			var elems []json.RawMessage
			if err := json.Unmarshal(entries[0].val, &elems); err == nil {
				return elems, ShapeSingleNested
			}
		}
		return []json.RawMessage{raw}, ShapeSingleObject
	default:
		return nil, ShapeEmpty
	}
}

// coerceTriple fills the canonical fields from a row, defaulting anything
// missing or non-string to the empty string.
func coerceTriple(raw json.RawMessage, includeCategory bool) Triple {
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)

	t := Triple{
		Subject:   stringField(fields, "subject"),
		Predicate: stringField(fields, "predicate"),
		Object:    stringField(fields, "object"),
	}
	if includeCategory {
		c := stringField(fields, "category")
		t.Category = &c
	}
	return t
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// entry is one key/value pair of a JSON object in document order. Go maps
// are unordered, so the cascade scans the raw token stream instead to keep
// numbered-dict row order deterministic.
type entry struct {
	key string
	val json.RawMessage
}

func objectEntries(raw json.RawMessage) ([]entry, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	var entries []entry
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := kt.(string)
		if !ok {
			return nil, false
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, false
		}
		entries = append(entries, entry{key: key, val: val})
	}
	return entries, true
}

// allNumericKeys reports whether every key is a base-10 digit string. An
// empty object passes vacuously, which makes {} normalize to zero rows.
func allNumericKeys(entries []entry) bool {
	for _, e := range entries {
		if e.key == "" {
			return false
		}
		for _, r := range e.key {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
