package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/loomlite/backend/internal/queue"
	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/internal/util"
	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/hierarchy"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// CreateDocumentHandler ingests one document: its extracted text plus the
// flat concept and relation set. The hierarchy is built asynchronously by the
// worker, so the response carries the document before any clustering exists.
func CreateDocumentHandler(c echo.Context) error {
	type createDocumentBody struct {
		Title     string            `json:"title" validate:"required"`
		Filename  string            `json:"filename"`
		Content   string            `json:"content" validate:"required"`
		Concepts  []common.Concept  `json:"concepts" validate:"required,min=1"`
		Relations []common.Relation `json:"relations"`
	}

	type createDocumentResponse struct {
		Message  string           `json:"message"`
		Document *common.Document `json:"document,omitempty"`
	}

	data := new(createDocumentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDocumentResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDocumentResponse{
			Message: "Invalid request body",
		})
	}

	now := time.Now().UTC()
	doc := common.Document{
		ID:        util.NewDocID(),
		Title:     data.Title,
		Filename:  data.Filename,
		Content:   util.SanitizePostgresText(data.Content),
		WordCount: util.CountWords(data.Content),
		CreatedAt: now,
	}

	concepts := make([]common.Concept, 0, len(data.Concepts))
	for _, concept := range data.Concepts {
		// The hierarchy engine reserves these shapes for nodes it creates;
		// letting them in would make a rebuild strip user data.
		if hierarchy.IsSynthesized(concept) {
			return c.JSON(http.StatusBadRequest, createDocumentResponse{
				Message: "Concept types Topic and Refinement and ids of the form {id}_sub_{n} are reserved",
			})
		}
		concept.DocID = doc.ID
		concept.HierarchyLevel = 0
		concept.ParentClusterID = ""
		concept.ParentConceptID = ""
		if concept.CreatedAt.IsZero() {
			concept.CreatedAt = now
		}
		concepts = append(concepts, concept)
	}
	relations := make([]common.Relation, 0, len(data.Relations))
	for _, relation := range data.Relations {
		relation.DocID = doc.ID
		relations = append(relations, relation)
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if err := storage.SaveDocument(ctx, doc); err != nil {
		logger.Error("Failed to save document", "err", err)
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}
	if err := storage.ReplaceOntology(ctx, doc.ID, concepts, relations, nil); err != nil {
		logger.Error("Failed to save ontology", "doc_id", doc.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}

	queueData := queue.HierarchyQueueMsg{
		Message: "Document created successfully",
		JobID:   util.NewJobID(),
		DocID:   doc.ID,
	}
	msgBytes, err := json.Marshal(queueData)
	if err == nil {
		ch := c.(*middleware.AppContext).App.Queue
		err = queue.PublishFIFO(ch, queue.HierarchyQueue, msgBytes)
	}
	if err != nil {
		logger.Error("Failed to publish to hierarchy_queue", "doc_id", doc.ID, "err", err)
	}

	doc.Content = ""
	return c.JSON(http.StatusOK, createDocumentResponse{
		Message:  "Document created successfully",
		Document: &doc,
	})
}
