package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/quantgrid/xetrapulse/config"
	"github.com/quantgrid/xetrapulse/internal/api"
	"github.com/quantgrid/xetrapulse/internal/service"
	"github.com/quantgrid/xetrapulse/internal/storage"
)

// s3Initializer is an indirection used by InitializeApp; overridden in tests
// to avoid touching the real AWS config chain.
var s3Initializer = InitS3

// InitializeApp sets up all api-mode dependencies and returns a fully
// configured Gin router, a cleanup function for graceful shutdown, and any
// error encountered during initialization.
//
// Responsibilities:
//   - Creates the S3 client via InitS3().
//   - Initializes the object store over source/target buckets.
//   - Creates the report service and HTTP handler layers.
//   - Configures the Gin router and the health/readiness probes.
func InitializeApp(ctx context.Context) (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	client, err := s3Initializer(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize s3: %w", err)
	}

	// Object store over the configured buckets
	store := storage.NewObjectStore(
		client,
		cfg.Report.SourceBucket,
		cfg.Report.TargetBucket,
		cfg.Report.ReportKey,
		cfg.Report.FetchParallel,
	)

	// Service layer (report queries against the published artifact)
	svc := service.NewReportService(store)

	// HTTP handler layer
	handler := api.NewHandler(svc)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(store.Ping)
	healthHandler.Register(router)

	// No held resources; the S3 client needs no explicit shutdown.
	cleanup := func() {}

	return router, cleanup, nil
}
