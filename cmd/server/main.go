package main

import (
	"github.com/loomlite/backend/internal/server"
	"github.com/loomlite/backend/internal/util"
	"github.com/loomlite/backend/pkg/logger"
	"github.com/loomlite/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleBackend(console.ConsoleBackendParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
