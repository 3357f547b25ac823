// Package memstore provides an in-memory implementation of triples.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/tripled/internal/triples"
)

// Store holds sessions in memory. Suitable for dev/testing and for the
// default single-process deployment.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*triples.Session
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{sessions: make(map[string]*triples.Session)}
}

// Get retrieves a session by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triples.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	return copySession(sess), true, nil
}

// Put stores a copy of the session, replacing any previous state.
func (s *Store) Put(_ context.Context, sess *triples.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func copySession(sess *triples.Session) *triples.Session {
	cp := *sess
	if sess.Triples != nil {
		cp.Triples = make([]triples.Triple, len(sess.Triples))
		copy(cp.Triples, sess.Triples)
	}
	if sess.Synonyms != nil {
		cp.Synonyms = make([]triples.SynonymSet, len(sess.Synonyms))
		copy(cp.Synonyms, sess.Synonyms)
	}
	return &cp
}
