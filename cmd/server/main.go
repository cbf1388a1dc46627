package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/charstorm/toposphere/internal/server"
	"github.com/charstorm/toposphere/internal/server/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
