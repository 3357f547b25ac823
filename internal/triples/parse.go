package triples

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls the JSON document out of a raw model completion.
// Models regularly wrap output in markdown code fences or surround the
// document with prose, so this trims fences first and then falls back to
// slicing from the first opening bracket to the matching last closer.
func extractJSON(text string) json.RawMessage {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned)
	}

	// Last resort: take the outermost bracketed region, whichever opener
	// appears first.
	pair := [2]string{"{", "}"}
	if a, o := strings.Index(cleaned, "["), strings.Index(cleaned, "{"); a >= 0 && (o < 0 || a < o) {
		pair = [2]string{"[", "]"}
	}
	start := strings.Index(cleaned, pair[0])
	end := strings.LastIndex(cleaned, pair[1])
	if start >= 0 && end > start {
		candidate := cleaned[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate)
		}
	}
	return nil
}
