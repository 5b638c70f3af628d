package routes

import (
	"encoding/json"
	"net/http"

	"github.com/loomlite/backend/internal/queue"
	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// DeleteDocumentHandler queues the deletion so an in-flight hierarchy build
// can finish under its lease before the rows go away.
func DeleteDocumentHandler(c echo.Context) error {
	type deleteDocumentParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteDocumentResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteDocumentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDocumentResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDocumentResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if _, err := storage.GetDocument(ctx, params.ID); err != nil {
		return c.JSON(http.StatusNotFound, deleteDocumentResponse{
			Message: "Document not found",
		})
	}

	queueData := queue.DeleteQueueMsg{
		Message: "Document deletion requested",
		DocID:   params.ID,
	}
	msgBytes, err := json.Marshal(queueData)
	if err == nil {
		ch := c.(*middleware.AppContext).App.Queue
		err = queue.PublishFIFO(ch, queue.DeleteQueue, msgBytes)
	}
	if err != nil {
		logger.Error("Failed to publish to delete_queue", "doc_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteDocumentResponse{
		Message: "Document deletion queued",
	})
}
