package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/verzendhq/verzendbot/app"
	corecmd "github.com/verzendhq/verzendbot/core/cmd"
)

func main() {
	// Missing .env is fine; config falls back to the environment.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config/config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("verzendbot: %v", err)
	}
}
