package pgx

import (
	"context"
	"fmt"

	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// SaveDocument inserts the document row including its extracted text. The
// summary and its embedding arrive later, after the worker has built the
// hierarchy.
func (s *OntologyDBStorage) SaveDocument(ctx context.Context, doc common.Document) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO documents (id, title, filename, content, summary, word_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    filename = EXCLUDED.filename,
		    content = EXCLUDED.content,
		    word_count = EXCLUDED.word_count`,
		doc.ID, doc.Title, doc.Filename, doc.Content, doc.Summary, doc.WordCount, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *OntologyDBStorage) GetDocument(ctx context.Context, id string) (common.Document, error) {
	var doc common.Document
	err := s.conn.QueryRow(ctx, `
		SELECT id, title, filename, COALESCE(content, ''), COALESCE(summary, ''), word_count, created_at
		FROM documents
		WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Title, &doc.Filename, &doc.Content, &doc.Summary, &doc.WordCount, &doc.CreatedAt)
	if err != nil {
		return common.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *OntologyDBStorage) ListDocuments(ctx context.Context) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, title, filename, COALESCE(summary, ''), word_count, created_at
		FROM documents
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]common.Document, 0)
	for rows.Next() {
		var doc common.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Filename, &doc.Summary, &doc.WordCount, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the document and, via cascading foreign keys, its
// concepts, relations, clusters, and engagement stats.
func (s *OntologyDBStorage) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	logger.Debug("document deleted", "doc_id", id, "rows", tag.RowsAffected())
	return nil
}

// UpdateDocumentSummary stores the generated summary and its embedding.
// A nil embedding leaves the stored vector untouched.
func (s *OntologyDBStorage) UpdateDocumentSummary(ctx context.Context, id string, summary string, embedding []float32) error {
	if embedding == nil {
		_, err := s.conn.Exec(ctx,
			`UPDATE documents SET summary = $2 WHERE id = $1`, id, summary)
		if err != nil {
			return fmt.Errorf("update summary %s: %w", id, err)
		}
		return nil
	}

	_, err := s.conn.Exec(ctx,
		`UPDATE documents SET summary = $2, embedding = $3 WHERE id = $1`,
		id, summary, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("update summary %s: %w", id, err)
	}
	return nil
}

// SimilarDocuments scores stored summary embeddings against the query
// embedding by cosine similarity. Documents without an embedding are
// skipped.
func (s *OntologyDBStorage) SimilarDocuments(ctx context.Context, embedding []float32, limit int) (map[string]float64, error) {
	if len(embedding) == 0 {
		return map[string]float64{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("similar documents: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var id string
		var similarity float64
		if err := rows.Scan(&id, &similarity); err != nil {
			return nil, err
		}
		if similarity < 0 {
			similarity = 0
		}
		scores[id] = similarity
	}
	return scores, rows.Err()
}
