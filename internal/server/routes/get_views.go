package routes

import (
	"net/http"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/logger"
	"github.com/loomlite/backend/pkg/rank"
	"github.com/loomlite/backend/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func GetViewsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	views, err := storage.ListViews(ctx)
	if err != nil {
		logger.Error("Failed to list views", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, views)
}

// GetViewHandler loads a saved view and executes its search in one request.
func GetViewHandler(c echo.Context) error {
	type getViewParams struct {
		ID string `param:"id" validate:"required"`
	}

	type getViewResponse struct {
		Message string              `json:"message"`
		View    *store.SavedView    `json:"view,omitempty"`
		Results []rank.SearchResult `json:"results,omitempty"`
	}

	params := new(getViewParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getViewResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getViewResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	view, err := app.Storage.GetView(ctx, params.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, getViewResponse{
			Message: "View not found",
		})
	}

	results, err := executeSearch(ctx, app, view.Query, view.Types, view.Tags, true)
	if err != nil {
		logger.Error("Failed to execute view search", "view_id", view.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getViewResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getViewResponse{
		Message: "View found",
		View:    &view,
		Results: results,
	})
}
