package routes

import (
	"net/http"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetOntologyHandler returns the full stored ontology of one document:
// concepts with their hierarchy placement, relations, and cluster records.
func GetOntologyHandler(c echo.Context) error {
	type getOntologyParams struct {
		ID string `param:"id" validate:"required"`
	}

	type getOntologyResponse struct {
		Message   string            `json:"message"`
		Concepts  []common.Concept  `json:"concepts,omitempty"`
		Relations []common.Relation `json:"relations,omitempty"`
		Clusters  []common.Cluster  `json:"clusters,omitempty"`
	}

	params := new(getOntologyParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getOntologyResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getOntologyResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if _, err := storage.GetDocument(ctx, params.ID); err != nil {
		return c.JSON(http.StatusNotFound, getOntologyResponse{
			Message: "Document not found",
		})
	}

	concepts, err := storage.GetConcepts(ctx, params.ID)
	if err != nil {
		logger.Error("Failed to load concepts", "doc_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getOntologyResponse{
			Message: "Internal server error",
		})
	}
	relations, err := storage.GetRelations(ctx, params.ID)
	if err != nil {
		logger.Error("Failed to load relations", "doc_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getOntologyResponse{
			Message: "Internal server error",
		})
	}
	clusters, err := storage.GetClusters(ctx, params.ID)
	if err != nil {
		logger.Error("Failed to load clusters", "doc_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getOntologyResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getOntologyResponse{
		Message:   "Ontology found",
		Concepts:  concepts,
		Relations: relations,
		Clusters:  clusters,
	})
}
