package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"fhtsuite/adapters/api"
	"fhtsuite/internal/config"
	"fhtsuite/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(context.Background()); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	server := api.NewServer(appContainer.SuiteService, cfg.Server.GinMode)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
