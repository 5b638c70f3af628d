package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/loomlite/backend/internal/server/middleware"
	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"
	"github.com/loomlite/backend/pkg/rank"

	"github.com/labstack/echo/v4"
)

// GetFoldersHandler lists the semantic folders of every document: one folder
// per cluster, with the member concepts ordered by the requested sort mode.
// Auto mode ranks by the adaptive composite score.
func GetFoldersHandler(c echo.Context) error {
	type folder struct {
		ID    string            `json:"id"`
		DocID string            `json:"doc_id"`
		Label string            `json:"label"`
		Items []rank.FolderItem `json:"items"`
	}

	type getFoldersResponse struct {
		Message string   `json:"message"`
		Folders []folder `json:"folders"`
	}

	mode := rank.ParseSortMode(c.QueryParam("sort"))
	weights := rank.DefaultWeights().WithDeltas(
		floatParam(c, "dw_confidence"),
		floatParam(c, "dw_relation"),
		floatParam(c, "dw_recency"),
		floatParam(c, "dw_hierarchy"),
	)

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	docs, err := storage.ListDocuments(ctx)
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, getFoldersResponse{
			Message: "Internal server error",
		})
	}

	now := time.Now()
	folders := make([]folder, 0)

	for _, doc := range docs {
		clusters, err := storage.GetClusters(ctx, doc.ID)
		if err != nil {
			logger.Error("Failed to load clusters", "doc_id", doc.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, getFoldersResponse{
				Message: "Internal server error",
			})
		}
		if len(clusters) == 0 {
			continue
		}

		concepts, err := storage.GetConcepts(ctx, doc.ID)
		if err != nil {
			logger.Error("Failed to load concepts", "doc_id", doc.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, getFoldersResponse{
				Message: "Internal server error",
			})
		}
		counts, err := storage.RelationCounts(ctx, doc.ID)
		if err != nil {
			logger.Error("Failed to load relation counts", "doc_id", doc.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, getFoldersResponse{
				Message: "Internal server error",
			})
		}

		byID := make(map[string]common.Concept, len(concepts))
		for _, concept := range concepts {
			byID[concept.ID] = concept
		}

		for _, cluster := range clusters {
			items := make([]rank.FolderItem, 0, len(cluster.MemberIDs))
			for _, memberID := range cluster.MemberIDs {
				concept, ok := byID[memberID]
				if !ok {
					continue
				}
				items = append(items, rank.FolderItem{
					Concept:       concept,
					RelationCount: counts[memberID],
				})
			}

			folders = append(folders, folder{
				ID:    cluster.ID,
				DocID: cluster.DocID,
				Label: cluster.Label,
				Items: rank.OrderFolderItems(items, mode, weights, now),
			})
		}
	}

	return c.JSON(http.StatusOK, getFoldersResponse{
		Message: "Folders listed",
		Folders: folders,
	})
}

// floatParam parses an optional float query parameter, treating absent or
// malformed values as zero.
func floatParam(c echo.Context, name string) float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// GetTopHitsHandler returns the most engaged documents, scored from views,
// dwell time, and recency of last view.
func GetTopHitsHandler(c echo.Context) error {
	type topHit struct {
		rank.DocumentEngagement
		Title string `json:"title"`
	}

	type topHitsResponse struct {
		Message string   `json:"message"`
		Hits    []topHit `json:"hits"`
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Storage

	stats, err := storage.EngagementStats(ctx)
	if err != nil {
		logger.Error("Failed to load engagement stats", "err", err)
		return c.JSON(http.StatusInternalServerError, topHitsResponse{
			Message: "Internal server error",
		})
	}
	docs, err := storage.ListDocuments(ctx)
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, topHitsResponse{
			Message: "Internal server error",
		})
	}
	titles := make(map[string]string, len(docs))
	for _, doc := range docs {
		titles[doc.ID] = doc.Title
	}

	ranked := rank.TopHits(stats, limit, time.Now())
	hits := make([]topHit, 0, len(ranked))
	for _, engagement := range ranked {
		hits = append(hits, topHit{
			DocumentEngagement: engagement,
			Title:              titles[engagement.DocID],
		})
	}

	return c.JSON(http.StatusOK, topHitsResponse{
		Message: "Top hits listed",
		Hits:    hits,
	})
}
