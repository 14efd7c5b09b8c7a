package main

import (
	"context"
	"os"

	"survivalboard/cli"
)

// @title Survivalboard API
// @version 1.0
// @description Game session validation and leaderboard service
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
