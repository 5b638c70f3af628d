package routes

import (
	"net/http"
	"time"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/internal/util"
	"github.com/loomlite/backend/pkg/logger"
	"github.com/loomlite/backend/pkg/rank"
	"github.com/loomlite/backend/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// CreateViewHandler saves a named search configuration so it can be re-run
// from the sidebar. The sort mode is normalized; unknown values become auto.
func CreateViewHandler(c echo.Context) error {
	type createViewBody struct {
		Name     string   `json:"name" validate:"required"`
		Query    string   `json:"query"`
		Types    []string `json:"types"`
		Tags     []string `json:"tags"`
		SortMode string   `json:"sort_mode"`
	}

	type createViewResponse struct {
		Message string           `json:"message"`
		View    *store.SavedView `json:"view,omitempty"`
	}

	data := new(createViewBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createViewResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createViewResponse{
			Message: "Invalid request body",
		})
	}

	view := store.SavedView{
		ID:        util.NewViewID(),
		Name:      data.Name,
		Query:     data.Query,
		Types:     data.Types,
		Tags:      data.Tags,
		SortMode:  string(rank.ParseSortMode(data.SortMode)),
		CreatedAt: time.Now().UTC(),
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if err := storage.SaveView(ctx, view); err != nil {
		logger.Error("Failed to save view", "err", err)
		return c.JSON(http.StatusInternalServerError, createViewResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createViewResponse{
		Message: "View saved",
		View:    &view,
	})
}
