package main

import (
	"context"
	"time"

	"batch-reconciliation-backend/internal/config"
	"batch-reconciliation-backend/internal/logger"
	"batch-reconciliation-backend/internal/models"
	"batch-reconciliation-backend/internal/repository"
	"batch-reconciliation-backend/internal/routes"
	"batch-reconciliation-backend/internal/services/matching"
	service "batch-reconciliation-backend/internal/services/reconciliation"
	"batch-reconciliation-backend/internal/telemetry"
	"batch-reconciliation-backend/internal/templates"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.MappingTemplateSet{},
		&models.ReconciliationRun{},
		&models.RunEvent{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var store templates.Store
	switch cfg.TemplateStore {
	case config.TemplateStoreRedis:
		redisClient, err := config.InitRedis(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = repository.NewRedisTemplateStore(redisClient)
	case config.TemplateStoreMemory:
		store = templates.NewMemoryStore()
	default:
		store = repository.NewTemplateRepository(db)
	}

	recorder := telemetry.Nop
	if cfg.TelemetryEnabled {
		recorder = telemetry.Async(repository.NewRunEventRepository(db), log)
	}

	tolerance, err := decimal.NewFromString(cfg.MatchTolerance)
	if err != nil {
		log.Fatalf("Invalid MATCH_TOLERANCE %q: %v", cfg.MatchTolerance, err)
	}

	seed, err := config.LoadTemplateSeed(cfg.TemplateSeedFile)
	if err != nil {
		log.Fatalf("Failed to load template seed: %v", err)
	}

	reconService := service.NewReconciliationService(
		store,
		repository.NewRunRepository(db),
		recorder,
		service.Options{
			Tolerance:   tolerance,
			Mode:        matching.ParseModeFromString(cfg.ParseMode),
			TemplateKey: seed.Key,
			Logger:      log,
		},
	)

	if len(seed.Templates) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		added, err := reconService.SeedTemplates(ctx, seed.Templates)
		cancel()
		if err != nil {
			log.Fatalf("Failed to seed templates: %v", err)
		}
		log.WithField("added", added).Info("mapping templates seeded")
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.UploadMaxSize
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, reconService, log, cfg.UploadMaxSize)

	log.WithField("port", cfg.AppPort).Info("server starting")
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
