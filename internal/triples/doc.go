// Package triples provides the business boundary for tripled's brand
// semantic triple generation. It defines the Service (session lifecycle,
// prompt orchestration), the tolerant normalizer that coerces
// loosely-shaped LLM JSON into triple rows, the Store interface
// (persistence), and domain models.
package triples
