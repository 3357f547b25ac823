package triples

import (
	"testing"
)

func TestRenderCSV_WithCategory(t *testing.T) {
	t.Parallel()

	s := &Session{
		Brand:           "Acme Co",
		IncludeCategory: true,
		Triples: []Triple{
			{Subject: "Acme Co", Predicate: "offers", Object: "widgets", Category: strptr("services / products")},
			{Subject: "Acme Co", Predicate: "serves", Object: "builders, makers", Category: strptr("audience")},
		},
	}

	data, err := RenderCSV(s)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}

	want := "subject,predicate,object,category\n" +
		"Acme Co,offers,widgets,services / products\n" +
		"Acme Co,serves,\"builders, makers\",audience\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestRenderCSV_WithoutCategory(t *testing.T) {
	t.Parallel()

	s := &Session{
		Brand:           "Acme",
		IncludeCategory: false,
		Triples: []Triple{
			{Subject: "Acme", Predicate: "offers", Object: "X"},
		},
	}

	data, err := RenderCSV(s)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}

	want := "subject,predicate,object\nAcme,offers,X\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestRenderCSV_EmptySet(t *testing.T) {
	t.Parallel()

	data, err := RenderCSV(&Session{IncludeCategory: true})
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	if want := "subject,predicate,object,category\n"; string(data) != want {
		t.Errorf("csv = %q, want header only %q", data, want)
	}
}

func TestRenderCSV_NilCategoryPointer(t *testing.T) {
	t.Parallel()

	// Category column enabled but a row without the pointer set renders
	// as an empty cell rather than panicking.
	s := &Session{
		IncludeCategory: true,
		Triples:         []Triple{{Subject: "a", Predicate: "b", Object: "c"}},
	}

	data, err := RenderCSV(s)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	if want := "subject,predicate,object,category\na,b,c,\n"; string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		brand string
		want  string
	}{
		{"Moving Traffic Media", "moving_traffic_media_semantic_triples.csv"},
		{"Acme", "acme_semantic_triples.csv"},
		{"ACME  Co", "acme__co_semantic_triples.csv"},
		{"", "brand_semantic_triples.csv"},
	}

	for _, tt := range tests {
		if got := ExportFilename(tt.brand); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.brand, got, tt.want)
		}
	}
}
