package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// OntologyDBStorage implements store.OntologyStorage on PostgreSQL with
// pgvector for semantic similarity over document summary embeddings.
type OntologyDBStorage struct {
	conn pgxIConn
}

// NewOntologyDBStorage creates a storage backed by an existing connection or
// pool. The storage holds no state beyond the connection; one instance can
// serve all requests.
func NewOntologyDBStorage(conn pgxIConn) *OntologyDBStorage {
	return &OntologyDBStorage{conn: conn}
}
