package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medeasy/pos/internal/api"
	"medeasy/pos/internal/catalog"
	"medeasy/pos/internal/config"
	"medeasy/pos/internal/database"
	"medeasy/pos/internal/draft"
	"medeasy/pos/internal/logging"
	"medeasy/pos/internal/migrations"
	"medeasy/pos/internal/patients"
	"medeasy/pos/internal/salesapi"
	"medeasy/pos/internal/seed"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	if _, err := seed.LoadCatalog(db, cfg.CatalogCSV, logger); err != nil {
		logger.Warn("catalog seed skipped", zap.Error(err))
	}
	if cfg.PatientsCSV != "" {
		if _, err := seed.LoadPatients(db, cfg.PatientsCSV, logger); err != nil {
			logger.Warn("patient seed skipped", zap.Error(err))
		}
	}

	repo := catalog.NewRepository(db)
	cache := catalog.NewCache(repo, repo, logger)
	if err := cache.Refresh(context.Background()); err != nil {
		logger.Fatal("catalog load failed", zap.Error(err))
	}

	handler := api.New(db, cfg.Secret, api.Services{
		Catalog:       cache,
		Patients:      patients.NewRepository(db),
		Drafts:        draft.NewCollection(draftBackend(cfg, db, logger)),
		Sales:         salesapi.NewClient(cfg.SalesAPIURL, cfg.SalesAPIToken, logger),
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger,
	})

	logger.Info("MedEasy POS server starting", zap.String("port", cfg.HTTPPort), zap.String("draft_backend", cfg.DraftBackend))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func draftBackend(cfg config.Config, db *sqlx.DB, logger *zap.Logger) draft.Backend {
	switch cfg.DraftBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return draft.NewRedisBackend(client)
	case "memory":
		return draft.NewMemoryBackend()
	default:
		return draft.NewSQLBackend(db)
	}
}
