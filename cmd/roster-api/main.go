package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/helper-roster/api/swagger"
	"github.com/noah-isme/helper-roster/internal/collection"
	"github.com/noah-isme/helper-roster/internal/handler"
	"github.com/noah-isme/helper-roster/internal/middleware"
	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/repository"
	"github.com/noah-isme/helper-roster/internal/roster"
	"github.com/noah-isme/helper-roster/internal/service"
	"github.com/noah-isme/helper-roster/pkg/cache"
	"github.com/noah-isme/helper-roster/pkg/config"
	"github.com/noah-isme/helper-roster/pkg/database"
	"github.com/noah-isme/helper-roster/pkg/jobs"
	"github.com/noah-isme/helper-roster/pkg/logger"
	corsmiddleware "github.com/noah-isme/helper-roster/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/helper-roster/pkg/middleware/requestid"
	"github.com/noah-isme/helper-roster/pkg/storage"
)

// @title Helper Roster API
// @version 1.0.0
// @description Read-only view of the normalized helper and teacher availability roster
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schema, err := roster.New(models.SchemaVersion(cfg.Roster.Schema), roster.Options{
		LegacyHelpersAtOnce:  cfg.Roster.LegacyHelpersAtOnce,
		LegacyHelpersPerWeek: cfg.Roster.LegacyHelpersPerWeek,
	})
	if err != nil {
		logr.Fatal("invalid roster schema", zap.Error(err))
	}
	policy, err := collection.ParsePolicy(cfg.Roster.DedupPolicy)
	if err != nil {
		logr.Fatal("invalid dedup policy", zap.Error(err))
	}

	studentColumns, teacherColumns := schema.Columns()
	students, teachers, err := repository.NewSources(ctx, cfg.Sources, repository.Widths{Students: studentColumns, Teachers: teacherColumns})
	if err != nil {
		logr.Fatal("invalid roster source", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	rosterCfg := service.RosterServiceConfig{
		Students: students,
		Teachers: teachers,
		Schema:   schema,
		Policy:   policy,
		CacheTTL: cfg.Cache.TTL,
		Metrics:  metricsSvc,
		Logger:   logr,
	}

	if cfg.Snapshots.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		snapshots := repository.NewSnapshotRepository(db)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare snapshot tables", zap.Error(err))
		}
		rosterCfg.Snapshots = snapshots
	}
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, roster cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			rosterCfg.Cache = cacheRepo
		}
	}

	rosterSvc := service.NewRosterService(rosterCfg)
	if restored, err := rosterSvc.Restore(ctx); err != nil {
		logr.Warn("roster restore failed", zap.Error(err))
	} else if restored {
		logr.Info("roster restored")
	}
	if cfg.Roster.LoadOnStart {
		if _, err := rosterSvc.Load(ctx); err != nil {
			logr.Error("initial roster load failed", zap.Error(err))
		}
	}

	exportStore, err := newExportStore(ctx, cfg.Exports)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(rosterSvc, exportStore, logr)

	reloadSvc := service.NewReloadService(rosterSvc, jobs.QueueConfig{
		Workers:    cfg.Reload.Workers,
		MaxRetries: cfg.Reload.MaxRetries,
		RetryDelay: cfg.Reload.RetryDelay,
		StateTTL:   cfg.Reload.StateTTL,
		Logger:     logr,
	})
	reloadSvc.Start(ctx)
	defer reloadSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	rosterHandler := handler.NewRosterHandler(rosterSvc, exportSvc)
	reloadHandler := handler.NewReloadHandler(reloadSvc)

	api := r.Group(cfg.APIPrefix)
	api.GET("/roster", rosterHandler.Summary)
	api.GET("/roster/assignments", rosterHandler.Assignments)
	api.GET("/roster/export", rosterHandler.Export)
	api.GET("/students", rosterHandler.ListStudents)
	api.GET("/students/:id", rosterHandler.GetStudent)
	api.GET("/teachers", rosterHandler.ListTeachers)
	api.GET("/teachers/:key", rosterHandler.GetTeacher)

	admin := api.Group("/reloads", middleware.AdminToken(cfg.Admin.TokenSecret))
	admin.POST("", reloadHandler.Trigger)
	admin.GET("/:id", reloadHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

type exportStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

func newExportStore(ctx context.Context, cfg config.ExportConfig) (exportStore, error) {
	switch cfg.Backend {
	case "", config.ExportBackendLocal:
		store, err := storage.NewLocalStorage(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.ExportBackendMinio:
		client, err := storage.NewMinio(cfg.Minio)
		if err != nil {
			return nil, err
		}
		store := storage.NewObjectStorage(client, cfg.Minio.Bucket)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
	}
}
