package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/loomlite/backend/pkg/ai"
	"github.com/loomlite/backend/pkg/store"
)

// App bundles the shared clients every handler needs.
type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	Storage  store.OntologyStorage
	AiClient ai.OntologyAIClient
}

// AppContext wraps the echo context with the shared application state.
// Handlers get it via c.(*middleware.AppContext).
type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	storage store.OntologyStorage,
	aiClient ai.OntologyAIClient,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:   db,
				Queue:    queue,
				Storage:  storage,
				AiClient: aiClient,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
