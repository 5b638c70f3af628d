package routes

import (
	"net/http"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func DeleteViewHandler(c echo.Context) error {
	type deleteViewParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteViewResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteViewParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteViewResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteViewResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	if _, err := storage.GetView(ctx, params.ID); err != nil {
		return c.JSON(http.StatusNotFound, deleteViewResponse{
			Message: "View not found",
		})
	}

	if err := storage.DeleteView(ctx, params.ID); err != nil {
		logger.Error("Failed to delete view", "view_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteViewResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteViewResponse{
		Message: "View deleted",
	})
}
