package server

import (
	"github.com/loomlite/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.GET("/documents", routes.GetDocumentsHandler)
	apiRoutes.POST("/documents", routes.CreateDocumentHandler)
	apiRoutes.GET("/documents/:id", routes.GetDocumentHandler)
	apiRoutes.DELETE("/documents/:id", routes.DeleteDocumentHandler)
	apiRoutes.GET("/documents/:id/ontology", routes.GetOntologyHandler)
	apiRoutes.POST("/documents/:id/engagement", routes.RecordEngagementHandler)

	// Search routes
	apiRoutes.GET("/search", routes.SearchHandler)
	apiRoutes.GET("/filters", routes.GetFiltersHandler)

	// Folder routes
	apiRoutes.GET("/folders", routes.GetFoldersHandler)
	apiRoutes.GET("/folders/top-hits", routes.GetTopHitsHandler)

	// Saved view routes
	apiRoutes.GET("/views", routes.GetViewsHandler)
	apiRoutes.POST("/views", routes.CreateViewHandler)
	apiRoutes.GET("/views/:id", routes.GetViewHandler)
	apiRoutes.DELETE("/views/:id", routes.DeleteViewHandler)
}
