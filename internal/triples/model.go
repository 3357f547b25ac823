package triples

import "time"

// Triple is one subject-predicate-object fact about a brand. Category is
// nil when the caller opted out of the category column; otherwise it is
// always set, defaulting to the empty string.
type Triple struct {
	Subject   string  `json:"subject"`
	Predicate string  `json:"predicate"`
	Object    string  `json:"object"`
	Category  *string `json:"category,omitempty"`
}

// Category labels the model is asked to distribute triples across.
const (
	CategoryServices        = "services / products"
	CategoryAudience        = "audience"
	CategoryValueProps      = "value-propositions"
	CategoryDifferentiators = "differentiators"
)

// Categories lists the category labels in display order.
var Categories = []string{
	CategoryServices,
	CategoryAudience,
	CategoryValueProps,
	CategoryDifferentiators,
}

// SynonymSet holds the suggested synonyms for one attribute field.
type SynonymSet struct {
	Label string   `json:"label"`
	Words []string `json:"words"`
}

// Session is the per-user working state: the last generated triple set and
// the last fetched synonym sets. Each action replaces its slice wholesale;
// nothing is ever merged.
type Session struct {
	ID              string       `json:"id"`
	Brand           string       `json:"brand"`
	IncludeCategory bool         `json:"include_category"`
	Triples         []Triple     `json:"triples"`
	Synonyms        []SynonymSet `json:"synonyms,omitempty"`
	TokensUsed      int          `json:"tokens_used,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Count bounds for a single generation request.
const (
	MinTripleCount = 10
	MaxTripleCount = 200
)
