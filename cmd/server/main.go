package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-projection/internal/adapter/grpc"
	httpadapter "github.com/simaogato/wealthflow-projection/internal/adapter/http"
	"github.com/simaogato/wealthflow-projection/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-projection/internal/cache"
	"github.com/simaogato/wealthflow-projection/internal/config"
	"github.com/simaogato/wealthflow-projection/internal/logger"
	"github.com/simaogato/wealthflow-projection/internal/scheduler"
	"github.com/simaogato/wealthflow-projection/internal/usecase/projection"
	"github.com/simaogato/wealthflow-projection/internal/usecase/report"
	"github.com/simaogato/wealthflow-projection/internal/usecase/scenario"
	"github.com/simaogato/wealthflow-projection/internal/usecase/simulation"
	"github.com/simaogato/wealthflow-projection/internal/usecase/snapshot"
)

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// 2. Setup Database
	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Msg("Database schema applied")

	// 3. Initialize Repositories (Postgres)
	assetRepo := postgres.NewAssetRepository(db)
	entityRepo := postgres.NewEntityRepository(db)
	scenarioRepo := postgres.NewScenarioRepository(db)
	projectionRepo := postgres.NewProjectionRepository(db)

	// 4. Initialize Services (Use Cases)
	computationCache := cache.New(cfg.Cache, log)
	engine := simulation.NewEngine(cfg.Assumptions)

	snapshotService := snapshot.NewSnapshotService(assetRepo, entityRepo, log)
	scenarioService := scenario.NewScenarioService(scenarioRepo, snapshotService, log)
	projectionService := projection.NewProjectionService(projectionRepo, scenarioService, snapshotService, engine, log)
	reportService := report.NewReportService(assetRepo, entityRepo, computationCache, log)

	// 5. Schedule cache maintenance
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.PurgeSpec, scheduler.CachePurgeJob{Cache: computationCache, Log: log}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.PurgeSpec).Msg("Failed to schedule cache purge")
	}
	sched.Start()

	// 6. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log.With().Str("component", "grpc").Logger()),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)

	grpcAdapter := grpcadapter.NewServer(scenarioService, projectionService, reportService)
	grpcadapter.RegisterProjectionServiceServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCPort).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 7. Start admin HTTP server
	adminServer := httpadapter.New(httpadapter.Config{
		Addr:     cfg.HTTPPort,
		APIToken: cfg.APIToken,
		Cache:    computationCache,
		DB:       db,
		Log:      log,
	})

	go func() {
		if err := adminServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve admin HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, grpcServer, adminServer, sched)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, adminServer *httpadapter.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Admin HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
