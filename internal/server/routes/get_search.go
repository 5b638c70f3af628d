package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/logger"
	"github.com/loomlite/backend/pkg/rank"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// SearchHandler runs the hybrid search: lexical title match fused with
// concept-label match and, when enabled, semantic similarity over the stored
// summary embeddings.
func SearchHandler(c echo.Context) error {
	type searchResponse struct {
		Message string              `json:"message"`
		Results []rank.SearchResult `json:"results"`
		Count   int                 `json:"count"`
	}

	query := c.QueryParam("q")
	types := splitListParam(c.QueryParam("types"))
	tags := splitListParam(c.QueryParam("tags"))
	semanticEnabled := c.QueryParam("semantic") != "false"

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	results, err := executeSearch(ctx, app, query, types, tags, semanticEnabled)
	if err != nil {
		logger.Error("Search failed", "err", err)
		return c.JSON(http.StatusInternalServerError, searchResponse{
			Message: "Internal server error",
			Results: []rank.SearchResult{},
		})
	}

	return c.JSON(http.StatusOK, searchResponse{
		Message: "Search completed",
		Results: results,
		Count:   len(results),
	})
}

// executeSearch loads the corpus and runs the ranker. Semantic similarity is
// best effort: an embedding failure degrades to lexical-only fusion instead
// of failing the request.
func executeSearch(
	ctx context.Context,
	app *middleware.App,
	query string,
	types, tags []string,
	semanticEnabled bool,
) ([]rank.SearchResult, error) {
	docs, err := app.Storage.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	concepts, err := app.Storage.ListAllConcepts(ctx)
	if err != nil {
		return nil, err
	}

	var semantic map[string]float64
	if semanticEnabled && strings.TrimSpace(query) != "" {
		embedding, err := app.AiClient.GenerateEmbedding(ctx, []byte(query))
		if err != nil {
			logger.Warn("Query embedding failed, lexical search only", "err", err)
		} else {
			semantic, err = app.Storage.SimilarDocuments(ctx, embedding, len(docs))
			if err != nil {
				logger.Warn("Similarity lookup failed, lexical search only", "err", err)
				semantic = nil
			}
		}
	}

	results := rank.Search(query, docs, concepts, semantic, rank.SearchOptions{
		Types:           types,
		Tags:            tags,
		SemanticEnabled: semanticEnabled,
	})
	return results, nil
}

func splitListParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
