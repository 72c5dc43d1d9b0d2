package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hdb_service/internal/api"
	"hdb_service/internal/config"
	"hdb_service/internal/core"
	"hdb_service/internal/domain/model"
	"hdb_service/internal/domain/repository"
	"hdb_service/internal/infrastructure/onemap"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	// Reference sets: missing or broken tables are fatal, the service
	// cannot price anything without them.
	mrts, err := loadTransitSet(cfg, log)
	if err != nil {
		log.Fatal("failed to load MRT reference set", zap.Error(err))
	}
	malls, err := repository.LoadReferenceCSV(cfg.MallPath)
	if err != nil {
		log.Fatal("failed to load mall reference set", zap.Error(err))
	}
	schools, err := repository.LoadReferenceCSV(cfg.SchoolPath)
	if err != nil {
		log.Fatal("failed to load school reference set", zap.Error(err))
	}

	// The precomputed feature table is optional; without it every
	// address resolves through live lookups.
	table := loadFeatureTable(cfg, log)

	engine, err := core.NewInferenceEngine(cfg.ModelPath)
	if err != nil {
		log.Fatal("failed to load model", zap.Error(err))
	}

	oneMapClient := onemap.NewClient(
		cfg.OneMap.BaseURL,
		cfg.OneMap.Email,
		cfg.OneMap.Password,
		time.Duration(cfg.OneMap.TimeoutSeconds)*time.Second,
		cfg.OneMap.MaxRetries,
		log,
	)

	resolver := core.NewFeatureResolver(table, oneMapClient, oneMapClient, mrts, malls, schools, log)
	service := core.NewPredictionService(resolver, engine, log)
	handler := api.NewHandler(service, log)

	addr := cfg.BindAddr + ":" + cfg.Port
	log.Info("starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler.Routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// loadTransitSet loads the MRT reference set from CSV, falling back to
// an OSM query when the CSV is absent and an Overpass endpoint is
// configured.
func loadTransitSet(cfg *config.Config, log *zap.Logger) ([]model.ReferencePoint, error) {
	if _, err := os.Stat(cfg.MRTPath); err == nil {
		return repository.LoadReferenceCSV(cfg.MRTPath)
	}
	if cfg.OverpassURL == "" {
		return nil, fmt.Errorf("%s not found and no overpass endpoint configured", cfg.MRTPath)
	}
	log.Info("MRT CSV absent, querying OSM for stations", zap.String("endpoint", cfg.OverpassURL))
	overpassRepo := repository.NewOverpassRepository(cfg.OverpassURL, 30*time.Second)
	return overpassRepo.TransitStations()
}

func loadFeatureTable(cfg *config.Config, log *zap.Logger) model.FeatureLookup {
	if cfg.PostgresURL != "" {
		table, err := repository.LoadFeaturePostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatal("failed to load feature table from postgres", zap.Error(err))
		}
		log.Info("loaded feature table from postgres", zap.Int("records", table.Len()))
		return table
	}

	table, err := repository.LoadFeatureCSV(cfg.FeaturePath)
	if err != nil {
		// Degraded but serviceable: every address goes through the
		// live path.
		log.Warn("feature table unavailable, serving without fast path", zap.Error(err))
		return nil
	}
	log.Info("loaded feature table", zap.Int("records", table.Len()))
	return table
}
