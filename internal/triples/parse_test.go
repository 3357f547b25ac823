package triples

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"plain array", `[1,2]`, `[1,2]`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[{\"subject\":\"x\"}]\n```", `[{"subject":"x"}]`},
		{"surrounding prose", "Here you go:\n[{\"subject\":\"x\"}]\nHope that helps!", `[{"subject":"x"}]`},
		{"prose around object", "Sure. {\"triples\":[]} Done.", `{"triples":[]}`},
		{"leading whitespace", "  \n\t{\"a\":1}", `{"a":1}`},
		{"no json at all", "I cannot help with that.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extractJSON(tt.text)
			if string(got) != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractJSON_ObjectBeforeInnerArray(t *testing.T) {
	t.Parallel()

	// When the reply is an object wrapping an array, the object wins.
	text := "Result: {\"triples\":[{\"subject\":\"a\"}]}"
	got := extractJSON(text)
	if string(got) != `{"triples":[{"subject":"a"}]}` {
		t.Errorf("got %q, want the whole object", got)
	}
}
