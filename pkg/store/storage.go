package store

import (
	"context"
	"time"

	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/rank"
)

// SavedView is a persisted search configuration: a query plus concept
// filters and a folder sort mode, re-runnable from the sidebar.
type SavedView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	Types     []string  `json:"types,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	SortMode  string    `json:"sort_mode"`
	CreatedAt time.Time `json:"created_at"`
}

// OntologyStorage persists documents, their extracted ontologies, the
// generated hierarchy, engagement stats, and saved views. Implementations
// must be safe for concurrent use across documents.
type OntologyStorage interface {
	SaveDocument(ctx context.Context, doc common.Document) error
	GetDocument(ctx context.Context, id string) (common.Document, error)
	ListDocuments(ctx context.Context) ([]common.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	UpdateDocumentSummary(ctx context.Context, id string, summary string, embedding []float32) error

	// ReplaceOntology swaps the full concept/relation/cluster set of one
	// document atomically. A hierarchy rebuild regenerates everything, so
	// there is no partial update path.
	ReplaceOntology(
		ctx context.Context,
		docID string,
		concepts []common.Concept,
		relations []common.Relation,
		clusters []common.Cluster,
	) error
	GetConcepts(ctx context.Context, docID string) ([]common.Concept, error)
	GetRelations(ctx context.Context, docID string) ([]common.Relation, error)
	GetClusters(ctx context.Context, docID string) ([]common.Cluster, error)
	ListAllConcepts(ctx context.Context) ([]common.Concept, error)
	// RelationCounts returns, per concept id, how many relation ends of the
	// document touch it.
	RelationCounts(ctx context.Context, docID string) (map[string]int, error)

	RecordEngagement(ctx context.Context, docID string, dwellSeconds float64) error
	EngagementStats(ctx context.Context) ([]rank.EngagementStats, error)

	SaveView(ctx context.Context, view SavedView) error
	GetView(ctx context.Context, id string) (SavedView, error)
	ListViews(ctx context.Context) ([]SavedView, error)
	DeleteView(ctx context.Context, id string) error

	// SimilarDocuments returns cosine similarity scores in [0,1] of stored
	// document summary embeddings against the query embedding.
	SimilarDocuments(ctx context.Context, embedding []float32, limit int) (map[string]float64, error)
}
