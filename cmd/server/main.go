package main

import (
	"log"

	"github.com/Appesteijn/stooklijn/internal/api"
	"github.com/Appesteijn/stooklijn/internal/config"
	"github.com/Appesteijn/stooklijn/internal/database"
	"github.com/Appesteijn/stooklijn/internal/handler"
	"github.com/Appesteijn/stooklijn/internal/repository"
	"github.com/Appesteijn/stooklijn/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	sampleRepo := repository.NewSampleRepository(db)
	insightsRepo := repository.NewInsightsRepository(db)
	runRepo := repository.NewRunRepository(db)

	insightsService := service.NewInsightsService(insightsRepo, cfg.InsightsBaseURL)
	analysisService := service.NewAnalysisService(cfg, runRepo, sampleRepo, insightsService)

	router := api.SetupRouter(cfg, api.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisService),
		Sample:   handler.NewSampleHandler(sampleRepo),
		Cache:    handler.NewCacheHandler(insightsRepo),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
