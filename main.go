package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"csvquery/internal/config"
	"csvquery/internal/container"
	"csvquery/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// A missing API key stops startup before any listener exists.
	appConfig, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create application container: %v\n", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(context.Background())

	// The question log is optional; without a database questions are still answered.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := appContainer.Connect(ctx); err != nil {
		log.Printf("Question log unavailable, continuing without it: %v", err)
	}
	cancel()

	server, err := ui.NewServer(ui.Options{
		Store:          appContainer.Store,
		API:            appContainer.API,
		MaxUploadBytes: appConfig.Server.MaxUploadBytes,
		Sections:       appConfig.Overview.Sections,
		SecureCookie:   appConfig.Server.SecureCookie,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Agent model: %s, upload limit: %d MB", appConfig.AI.Model, appConfig.Server.MaxUploadBytes>>20)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
