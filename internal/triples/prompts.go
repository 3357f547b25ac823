package triples

import "fmt"

const (
	completionTemperature = 0.4
	completionMaxTokens   = 8192
	synonymMaxTokens      = 1024
)

func systemPrompt() string {
	return `You generate brand semantic triples for marketing use.
Reply with JSON only: no prose, no markdown fences. Every triple has the
fields subject, predicate, object, category, where category is one of
"services / products", "audience", "value-propositions",
"differentiators". The subject of every triple is the brand name exactly
as given.`
}

func buildPreviewPrompt(req *GenerateRequest) string {
	return fmt.Sprintf(`Subject is %q. Generate ONE triple each for services / products, audience, value-propositions, differentiators. Return JSON array with subject, predicate, object, category.

Services / products: %s
Audience: %s
Value propositions: %s
Differentiators: %s`,
		req.Brand, req.Services, req.Audience, req.ValueProps, req.Differentiators)
}

func buildGeneratePrompt(req *GenerateRequest, count int) string {
	return fmt.Sprintf(`Subject is %q. Produce EXACTLY %d triples, evenly across services / products, audience, value-propositions, differentiators. Return JSON array with subject, predicate, object, category.

Services / products: %s
Audience: %s
Value propositions: %s
Differentiators: %s`,
		req.Brand, count, req.Services, req.Audience, req.ValueProps, req.Differentiators)
}

func buildSynonymPrompt(text, label string) string {
	return fmt.Sprintf("For the following %s terms, suggest 5-10 closely related words or phrases. Return ONLY a JSON object with key `synonyms`.\n\n%s", label, text)
}
