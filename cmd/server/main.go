package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"platelog/config"
	"platelog/database"
	"platelog/logger"
	"platelog/routes"
)

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, relying on environment")
	}

	if err := database.InitDB(); err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	r := routes.SetupRouter()

	addr := ":" + config.GetEnv("PORT", "8080")
	logger.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
