package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantgrid/xetrapulse/config"
	"github.com/quantgrid/xetrapulse/internal/app"
	"github.com/quantgrid/xetrapulse/internal/logger"
	"github.com/quantgrid/xetrapulse/internal/pipeline"
	"github.com/quantgrid/xetrapulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up
// resources when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the xetrapulse application.
//
// Modes (selected via --mode flag):
//   - report: Builds the daily report for the configured window and publishes
//     it to the target bucket.
//   - api:    Starts the REST API that serves the published report.
//
// Flags:
//   - --mode:  Execution mode ("report" or "api"). Default: "report".
//   - --start: First partition day, YYYY-MM-DD. Defaults to START_DATE.
//   - --end:   Last partition day, YYYY-MM-DD. Defaults to END_DATE.
//   - --port:  Port for the API server. Defaults to SERVER_PORT.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "report", "Mode: report or api")
	start := flag.String("start", config.AppConfig.Report.StartDate, "First partition day (YYYY-MM-DD)")
	end := flag.String("end", config.AppConfig.Report.EndDate, "Last partition day (YYYY-MM-DD)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "report":
		// Batch mode: build and publish the daily report
		logger.L().Info().Msg("running report build")

		cfg := config.AppConfig.Report
		cfg.StartDate = *start
		cfg.EndDate = *end

		client, err := app.InitS3(ctx, config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("s3 connect error")
		}
		store := storage.NewObjectStore(
			client,
			cfg.SourceBucket,
			cfg.TargetBucket,
			cfg.ReportKey,
			cfg.FetchParallel,
		)

		if err := pipeline.Run(ctx, cfg, store, store); err != nil {
			logger.L().Fatal().Err(err).Msg("report build failed")
		}
		logger.L().Info().Msg("report build completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
