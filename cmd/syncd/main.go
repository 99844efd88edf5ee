package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/petsync/syncd/docs"
	"github.com/petsync/syncd/internal/cloud"
	"github.com/petsync/syncd/internal/config"
	"github.com/petsync/syncd/internal/handlers"
	custommw "github.com/petsync/syncd/internal/middleware"
	"github.com/petsync/syncd/internal/observability"
	"github.com/petsync/syncd/internal/repository"
	syncsvc "github.com/petsync/syncd/internal/sync"
)

const serviceName = "petsync-syncd"

// @title PetSync Daemon API
// @version 1.0
// @description Bidirectional field-level synchronization daemon for pet profiles
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	ctx := context.Background()
	telemetry, err := observability.Initialize(ctx, observability.NewConfig(serviceName, "1.0.0"))
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Initialize local database
	db, err := repository.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize local database: %v", err)
	}
	defer db.Close()

	tracedDB, err := observability.NewTraceDB(db, "sqlite")
	if err != nil {
		log.Fatalf("Failed to initialize traced database: %v", err)
	}

	profileRepo := repository.NewPetProfileRepository(tracedDB)
	kvRepo := repository.NewKVRepository(tracedDB)

	// Initialize the cloud store
	var cloudStore cloud.Store
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL cloud store")
		pgStore, err := cloud.NewPostgresStore(cfg.Cloud.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL cloud store: %v", err)
		}
		defer pgStore.Close()
		cloudStore = pgStore
	} else {
		log.Printf("Using HTTP cloud store at %s", cfg.Cloud.BaseURL)
		cloudStore = cloud.NewHTTPClient(
			cfg.Cloud.BaseURL,
			cfg.Cloud.Token,
			time.Duration(cfg.Cloud.RequestTimeoutSeconds)*time.Second,
		)
	}

	// Initialize the sync service
	syncMetrics, err := observability.NewSyncMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize sync metrics: %v", err)
	}
	syncService := syncsvc.NewService(cfg.OwnerID, profileRepo, kvRepo, cloudStore, syncMetrics)

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(syncService)
	profileHandler := handlers.NewProfileHandler(profileRepo, cfg.OwnerID)
	healthHandler := handlers.NewHealthHandler()

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize HTTP metrics: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.TracingMiddleware(serviceName))
	r.Use(observability.MetricsMiddleware(httpMetrics))
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/profiles", func(r chi.Router) {
		r.Post("/", profileHandler.Create)
		r.Get("/{id}", profileHandler.GetByID)
		r.Patch("/{id}", profileHandler.Update)
	})

	r.Route("/api/sync", func(r chi.Router) {
		r.Post("/field", syncHandler.SyncField)
		r.Post("/reconcile", syncHandler.Reconcile)
		r.Post("/resolve", syncHandler.Resolve)
		r.Post("/initial", syncHandler.InitialSync)
		r.Post("/retry", syncHandler.Retry)
		r.Post("/realtime/start", syncHandler.StartRealtime)
		r.Post("/realtime/stop", syncHandler.StopRealtime)
		r.Get("/status", syncHandler.Status)
		r.Delete("/data/{profileId}", syncHandler.ClearData)
	})

	// Background retry loop for failed initial syncs
	retryCtx, stopRetry := context.WithCancel(ctx)
	defer stopRetry()
	if cfg.Retry.Enabled {
		go retryLoop(retryCtx, syncService, time.Duration(cfg.Retry.IntervalMinutes)*time.Minute)
	}

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("PetSync daemon starting on %s", cfg.ServerAddress)
		log.Printf("Local database: %s", cfg.DatabasePath)
		log.Printf("Owner: %s", cfg.OwnerID)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	stopRetry()
	syncService.StopRealTime()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Telemetry shutdown error: %v", err)
	}

	log.Println("Daemon stopped")
}

// retryLoop periodically retries queued initial syncs until ctx is
// cancelled.
func retryLoop(ctx context.Context, service *syncsvc.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retried, remaining, err := service.RetryPending(ctx)
			if err != nil {
				observability.Warnf("Pending sync retry pass failed: %v", err)
				continue
			}
			if retried > 0 || remaining > 0 {
				observability.Infof("Pending sync retry pass: %d synced, %d still pending", retried, remaining)
			}
		}
	}
}
