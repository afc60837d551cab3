package main

import (
	"log"

	"github.com/JoeLimewire/weather-app/internal/bootstrap"
)

// @schemes http

// @title Forecast Viewer API
// @version 1.0.0
// @description Daily weather forecasts backed by OpenWeatherMap.

// @BasePath /api/v1

func main() {
	app, err := bootstrap.NewBootstrap()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}
