package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loomlite/backend/pkg/leaselock"
	"github.com/loomlite/backend/pkg/logger"
	pgxstore "github.com/loomlite/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeleteQueueMsg removes one document and its ontology.
type DeleteQueueMsg struct {
	Message string `json:"message"`
	DocID   string `json:"doc_id"`
}

// ProcessDeleteMessage deletes the document under its lease so an in-flight
// hierarchy build finishes (or is fenced off) before the rows disappear.
func ProcessDeleteMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(DeleteQueueMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	docID := data.DocID

	storage := pgxstore.NewOntologyDBStorage(conn)
	lockClient := leaselock.New(conn)

	start := time.Now()
	err := lockClient.WithLease(ctx, "doc:"+docID, leaselock.Options{
		TTL:        2 * time.Minute,
		RenewEvery: time.Minute,
		Wait:       true,
	}, func(leaseCtx context.Context) error {
		return storage.DeleteDocument(leaseCtx, docID)
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue] Document deleted",
		"doc_id", docID,
		"duration_sec", time.Since(start).Seconds(),
	)
	return nil
}
