package routes

import (
	"net/http"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// RecordEngagementHandler counts one view of a document and adds its dwell
// time to the engagement stats behind top-hits ranking.
func RecordEngagementHandler(c echo.Context) error {
	type recordEngagementBody struct {
		ID           string  `param:"id" validate:"required"`
		DwellSeconds float64 `json:"dwell_seconds" validate:"gte=0"`
	}

	type recordEngagementResponse struct {
		Message string `json:"message"`
	}

	data := new(recordEngagementBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, recordEngagementResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, recordEngagementResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if _, err := storage.GetDocument(ctx, data.ID); err != nil {
		return c.JSON(http.StatusNotFound, recordEngagementResponse{
			Message: "Document not found",
		})
	}

	if err := storage.RecordEngagement(ctx, data.ID, data.DwellSeconds); err != nil {
		logger.Error("Failed to record engagement", "doc_id", data.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, recordEngagementResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, recordEngagementResponse{
		Message: "Engagement recorded",
	})
}
