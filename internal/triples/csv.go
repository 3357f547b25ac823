package triples

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// RenderCSV writes the session's triple table as CSV with a fixed column
// order of subject, predicate, object and, when the session includes it,
// category.
func RenderCSV(s *Session) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"subject", "predicate", "object"}
	if s.IncludeCategory {
		header = append(header, "category")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, t := range s.Triples {
		row := []string{t.Subject, t.Predicate, t.Object}
		if s.IncludeCategory {
			category := ""
			if t.Category != nil {
				category = *t.Category
			}
			row = append(row, category)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename derives the CSV download name from the brand: lower-cased
// with spaces joined by underscores.
func ExportFilename(brand string) string {
	name := strings.ReplaceAll(strings.ToLower(brand), " ", "_")
	if name == "" {
		name = "brand"
	}
	return name + "_semantic_triples.csv"
}
