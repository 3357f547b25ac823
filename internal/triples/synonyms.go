package triples

import (
	"encoding/json"
	"strings"
)

// Attribute labels used when asking the model for related wording, keyed
// by the display label of each input field.
var synonymLabels = []struct {
	Field string
	Noun  string
}{
	{"Services / Products", "service or product"},
	{"Audience", "audience"},
	{"Value Propositions", "value proposition"},
	{"Differentiators", "differentiator"},
}

// ExtractSynonyms pulls a list of trimmed synonym strings out of a
// loosely-shaped JSON reply. The cascade mirrors the triple normalizer but
// is specialized to string lists:
//
//  1. object with a "synonyms" key holding a string array
//  2. object with a "synonyms" key holding a numbered dict of strings
//  3. object whose every key is a numeric string, values taken in order
//  4. first object value that is an array made up entirely of strings
//  5. bare string array
//
// Anything unrecognizable yields an empty slice, never an error.
func ExtractSynonyms(raw json.RawMessage) []string {
	switch firstByte(raw) {
	case '{':
		entries, ok := objectEntries(raw)
		if !ok {
			return []string{}
		}
		for _, e := range entries {
			if e.key != "synonyms" {
				continue
			}
			if firstByte(e.val) == '[' {
				if words, ok := looseStringList(e.val); ok {
					return words
				}
			}
			if firstByte(e.val) == '{' {
				if inner, ok := objectEntries(e.val); ok && allNumericKeys(inner) {
					return entryStrings(inner)
				}
			}
		}
		if len(entries) > 0 && allNumericKeys(entries) {
			return entryStrings(entries)
		}
		for _, e := range entries {
			if firstByte(e.val) != '[' {
				continue
			}
			if words, ok := strictStringList(e.val); ok {
				return words
			}
		}
		return []string{}
	case '[':
		if words, ok := looseStringList(raw); ok {
			return words
		}
		return []string{}
	default:
		return []string{}
	}
}

// looseStringList keeps the string elements of an array, trimmed, and
// skips everything else.
func looseStringList(raw json.RawMessage) ([]string, bool) {
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	words := make([]string, 0, len(elems))
	for _, e := range elems {
		if s, ok := e.(string); ok {
			words = append(words, strings.TrimSpace(s))
		}
	}
	return words, true
}

// strictStringList accepts an array only if every element is a string.
func strictStringList(raw json.RawMessage) ([]string, bool) {
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	words := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		words = append(words, strings.TrimSpace(s))
	}
	return words, true
}

func entryStrings(entries []entry) []string {
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e.val, &s); err == nil {
			words = append(words, strings.TrimSpace(s))
		}
	}
	return words
}
