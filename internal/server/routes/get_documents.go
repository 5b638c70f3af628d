package routes

import (
	"net/http"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func GetDocumentsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	docs, err := storage.ListDocuments(ctx)
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, docs)
}

func GetDocumentHandler(c echo.Context) error {
	type getDocumentParams struct {
		ID string `param:"id" validate:"required"`
	}

	type getDocumentResponse struct {
		Message  string           `json:"message"`
		Document *common.Document `json:"document,omitempty"`
	}

	params := new(getDocumentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDocumentResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDocumentResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	doc, err := storage.GetDocument(ctx, params.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, getDocumentResponse{
			Message: "Document not found",
		})
	}

	return c.JSON(http.StatusOK, getDocumentResponse{
		Message:  "Document found",
		Document: &doc,
	})
}
