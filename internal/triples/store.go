package triples

import "context"

// Store is the persistence interface for sessions. Put replaces the whole
// session; last write wins is the only consistency rule.
type Store interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Put(ctx context.Context, s *Session) error
}
