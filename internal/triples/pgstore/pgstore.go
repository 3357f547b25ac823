// Package pgstore provides a PostgreSQL implementation of triples.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/tripled/internal/triples"
)

var tracer = otel.Tracer("github.com/linnemanlabs/tripled/internal/triples/pgstore")

//go:embed schema.sql
var schema string

// Store persists sessions in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const sessionColumns = `id, brand, include_category, triples, synonyms, tokens_used, created_at, updated_at`

// Get retrieves a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*triples.Session, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	sess, err := scanSession(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if sess == nil {
		return nil, false, nil
	}
	return sess, true, nil
}

// Put inserts or updates a session (upsert on id).
func (s *Store) Put(ctx context.Context, sess *triples.Session) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	triplesJSON, err := json.Marshal(sess.Triples)
	if err != nil {
		return fmt.Errorf("marshal triples: %w", err)
	}
	synonymsJSON, err := json.Marshal(sess.Synonyms)
	if err != nil {
		return fmt.Errorf("marshal synonyms: %w", err)
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			brand = EXCLUDED.brand,
			include_category = EXCLUDED.include_category,
			triples = EXCLUDED.triples,
			synonyms = EXCLUDED.synonyms,
			tokens_used = EXCLUDED.tokens_used,
			updated_at = EXCLUDED.updated_at`

	_, err = s.pool.Exec(ctx, query,
		sess.ID, sess.Brand, sess.IncludeCategory,
		triplesJSON, synonymsJSON, sess.TokensUsed,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*triples.Session, error) {
	var (
		sess         triples.Session
		triplesJSON  []byte
		synonymsJSON []byte
	)
	err := row.Scan(
		&sess.ID, &sess.Brand, &sess.IncludeCategory,
		&triplesJSON, &synonymsJSON, &sess.TokensUsed,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal(triplesJSON, &sess.Triples); err != nil {
		return nil, fmt.Errorf("unmarshal triples: %w", err)
	}
	if err := json.Unmarshal(synonymsJSON, &sess.Synonyms); err != nil {
		return nil, fmt.Errorf("unmarshal synonyms: %w", err)
	}
	return &sess, nil
}
