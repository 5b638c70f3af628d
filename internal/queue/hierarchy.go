package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loomlite/backend/internal/util"
	"github.com/loomlite/backend/pkg/ai"
	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/hierarchy"
	"github.com/loomlite/backend/pkg/leaselock"
	"github.com/loomlite/backend/pkg/logger"
	pgxstore "github.com/loomlite/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HierarchyQueueMsg triggers a hierarchy (re)build for one document. JobID
// correlates the log lines of one build across server and worker.
type HierarchyQueueMsg struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
	DocID   string `json:"doc_id"`
}

// summaryInputLimit caps how much document text is handed to the summary
// prompt.
const summaryInputLimit = 12000

// ProcessHierarchyMessage rebuilds the concept hierarchy of one document. The
// document is locked for the duration of the build so concurrent workers never
// rebuild it at once. Synthesized nodes from a previous build are stripped
// before the engine runs, so the build is idempotent over the stored ontology.
func ProcessHierarchyMessage(
	ctx context.Context,
	aiClient ai.OntologyAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(HierarchyQueueMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	docID := data.DocID

	storage := pgxstore.NewOntologyDBStorage(conn)
	lockClient := leaselock.New(conn)

	start := time.Now()
	lease, err := lockClient.Acquire(ctx, "doc:"+docID, leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
		Wait:       true,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()

	doc, err := storage.GetDocument(lease.Context, docID)
	if err != nil {
		return err
	}

	stored, err := storage.GetConcepts(lease.Context, docID)
	if err != nil {
		return err
	}
	relations, err := storage.GetRelations(lease.Context, docID)
	if err != nil {
		return err
	}

	extracted := make([]common.Concept, 0, len(stored))
	for _, c := range stored {
		if hierarchy.IsSynthesized(c) {
			continue
		}
		c.HierarchyLevel = 0
		c.ParentClusterID = ""
		c.ParentConceptID = ""
		extracted = append(extracted, c)
	}

	labels := ai.NewLabelClient(aiClient)
	engine := hierarchy.NewEngine(hierarchy.NewEngineParams{
		Labels: labels,
		Config: hierarchy.DefaultConfig(),
	})

	result, err := engine.BuildHierarchy(lease.Context, docID, extracted, relations, doc.WordCount)
	if err != nil {
		return err
	}

	if err := storage.ReplaceOntology(lease.Context, docID, result.Concepts, relations, result.Clusters); err != nil {
		return err
	}

	logger.Info("[Queue] Hierarchy built",
		"job_id", data.JobID,
		"doc_id", docID,
		"depth", result.TargetDepth,
		"clusters", len(result.Clusters),
		"concepts", len(result.Concepts),
		"duration_sec", time.Since(start).Seconds(),
	)

	if doc.Summary == "" && doc.Content != "" {
		generateDocumentSummary(lease.Context, labels, aiClient, storage, doc)
	}

	return nil
}

// generateDocumentSummary writes the abstract and its embedding for the
// document. Failures only cost the summary, never the build.
func generateDocumentSummary(
	ctx context.Context,
	labels *ai.LabelClient,
	aiClient ai.OntologyAIClient,
	storage *pgxstore.OntologyDBStorage,
	doc common.Document,
) {
	text := doc.Content
	if len(text) > summaryInputLimit {
		text = text[:summaryInputLimit]
	}

	summary, err := util.RetryWithContext(ctx, 2, func(ctx context.Context) (string, error) {
		return labels.DocumentSummary(ctx, doc.Title, text)
	})
	if err != nil || summary == "" {
		logger.Warn("[Queue] Summary generation failed", "doc_id", doc.ID, "err", err)
		return
	}

	embedding, err := util.RetryWithContext(ctx, 2, func(ctx context.Context) ([]float32, error) {
		return aiClient.GenerateEmbedding(ctx, []byte(summary))
	})
	if err != nil {
		logger.Warn("[Queue] Summary embedding failed", "doc_id", doc.ID, "err", err)
		embedding = nil
	}

	if err := storage.UpdateDocumentSummary(ctx, doc.ID, summary, embedding); err != nil {
		logger.Warn("[Queue] Failed to store summary", "doc_id", doc.ID, "err", err)
	}
}
