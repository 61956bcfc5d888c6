package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "github.com/godilite/cs-dashboard/api/v1"
	"github.com/godilite/cs-dashboard/internal/config"
	handler "github.com/godilite/cs-dashboard/internal/grpc"
	"github.com/godilite/cs-dashboard/internal/httpapi"
	"github.com/godilite/cs-dashboard/internal/render"
	"github.com/godilite/cs-dashboard/internal/repository"
	"github.com/godilite/cs-dashboard/internal/service"
	"github.com/godilite/cs-dashboard/pkg/cache"
	dbbuilder "github.com/godilite/cs-dashboard/pkg/database"
	grpcsrv "github.com/godilite/cs-dashboard/pkg/grpc/server"
	httpsrv "github.com/godilite/cs-dashboard/pkg/http/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      handler.Cacher
	grpcServer *grpcsrv.Server
	httpServer *httpsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	schema, err := config.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	app := &App{logger: logger, dbPool: dbPool}
	ok := false
	defer func() {
		if !ok {
			app.closeResources()
		}
	}()

	app.cache = cache.Noop{}
	if cfg.CacheEnabled {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		app.cache = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Response cache disabled")
	}

	dashboardService := service.NewDashboardService(
		repository.NewTableCache(logger),
		repository.NewTicketIndex(dbPool),
		service.Options{
			DataPath: cfg.DataPath,
			Schema:   schema,
			TopTerms: cfg.TopTerms,
		},
		logger,
	)
	if err := dashboardService.Warm(ctx); err != nil {
		return nil, fmt.Errorf("ticket data load failed: %w", err)
	}
	logger.Info("Ticket data loaded", zap.String("path", cfg.DataPath))

	var renderOpts []render.Option
	if cfg.ChartFontPath != "" {
		font, err := render.LoadFont(cfg.ChartFontPath)
		if err != nil {
			return nil, fmt.Errorf("chart font load failed: %w", err)
		}
		renderOpts = append(renderOpts, render.WithFont(font))
	}
	renderer := render.New(renderOpts...)

	grpcHandlers := handler.NewGRPCHandlers(dashboardService, renderer, app.cache, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterDashboardServer(s, grpcHandlers)
	})
	app.grpcServer = grpcServer

	if cfg.HTTPPort > 0 {
		httpServer, err := httpsrv.New(
			httpsrv.WithPort(cfg.HTTPPort),
			httpsrv.WithLogger(logger),
			httpsrv.WithAllowedOrigins(cfg.CORSAllowedOrigins...),
			httpsrv.WithReleaseMode(cfg.IsProduction()),
		)
		if err != nil {
			_ = grpcServer.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create HTTP server: %w", err)
		}
		httpapi.NewHandlers(grpcHandlers, logger).Register(httpServer.Router())
		app.httpServer = httpServer
	}

	ok = true
	return app, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	if a.httpServer != nil {
		a.httpServer.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.Shutdown(ctx)

	_ = a.logger.Sync()
	return nil
}

// Shutdown marks the dashboard service NOT_SERVING, drains both servers and
// releases the cache and database.
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("application shutting down")

	a.drain()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	a.closeResources()

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}
}

// drain lets health probes see the dashboard go away before connections close.
func (a *App) drain() {
	a.grpcServer.SetServiceHealth(pb.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

func (a *App) closeResources() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
