package routes

import (
	"net/http"
	"sort"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/hierarchy"
	"github.com/loomlite/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetFiltersHandler lists the distinct concept types and tags present in the
// stored extractions, for populating search filter dropdowns. Synthesized
// hierarchy nodes are excluded so "Topic" and "Refinement" never show up as
// filterable types.
func GetFiltersHandler(c echo.Context) error {
	type getFiltersResponse struct {
		Types []string `json:"types"`
		Tags  []string `json:"tags"`
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	concepts, err := storage.ListAllConcepts(ctx)
	if err != nil {
		logger.Error("Failed to list concepts", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	typeSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})
	for _, concept := range concepts {
		if hierarchy.IsSynthesized(concept) {
			continue
		}
		if concept.Type != "" {
			typeSet[concept.Type] = struct{}{}
		}
		for _, tag := range concept.Tags {
			if tag != "" {
				tagSet[tag] = struct{}{}
			}
		}
	}

	resp := getFiltersResponse{
		Types: make([]string, 0, len(typeSet)),
		Tags:  make([]string, 0, len(tagSet)),
	}
	for t := range typeSet {
		resp.Types = append(resp.Types, t)
	}
	for t := range tagSet {
		resp.Tags = append(resp.Tags, t)
	}
	sort.Strings(resp.Types)
	sort.Strings(resp.Tags)

	return c.JSON(http.StatusOK, resp)
}
