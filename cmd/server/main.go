package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/kanban/api/handler"
	"github.com/fastygo/kanban/internal/config"
	"github.com/fastygo/kanban/internal/infrastructure/buffer"
	"github.com/fastygo/kanban/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/kanban/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/kanban/internal/infrastructure/redis"
	"github.com/fastygo/kanban/internal/middleware"
	"github.com/fastygo/kanban/internal/router"
	"github.com/fastygo/kanban/internal/services"
	"github.com/fastygo/kanban/internal/services/lifecycle"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/pkg/logger"
	"github.com/fastygo/kanban/repository/postgres"
	redisRepo "github.com/fastygo/kanban/repository/redis"
	authUC "github.com/fastygo/kanban/usecase/auth"
	boardUC "github.com/fastygo/kanban/usecase/board"
	profileUC "github.com/fastygo/kanban/usecase/profile"
	projectUC "github.com/fastygo/kanban/usecase/project"
	reportUC "github.com/fastygo/kanban/usecase/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, cfg.Board.MonitorEvery, zapLogger)
	mon.Refresh()
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	columnRepo := postgres.NewColumnRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		activityRepo,
		userRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  cfg.Buffer.Retention,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	tokens := authUC.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer)
	authUseCase := authUC.New(userRepo, sessionRepo, tokens, cfg.JWT.SessionTTL, zapLogger)
	if err := authUseCase.SeedAdmin(appCtx, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
		zapLogger.Fatal("admin seed failed", zap.Error(err))
	}
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)
	projectUseCase := projectUC.New(projectRepo, zapLogger)

	ids := boardUC.NewIDMap()
	board := boardUC.New(boardUC.NewPolicy(cfg.Board.Pipeline), ids)
	boardUseCase := boardUC.NewUseCase(board, ids, cardRepo, columnRepo, activityRepo, bufferBridge, zapLogger)
	if err := boardUseCase.Load(appCtx); err != nil {
		zapLogger.Fatal("board load failed", zap.Error(err))
	}
	reportUseCase := reportUC.New(boardUseCase)

	ticker := services.NewBoardTicker(boardUseCase, cfg.Board.TickInterval, zapLogger)
	ticker.Run()
	ticker.Start()
	manager.Register("board_ticker", func(ctx context.Context) error {
		ticker.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Project: apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Board:   apiHandler.NewBoardHandler(boardUseCase, cfg.Board.DefaultProject, ctxAdapter, zapLogger),
		Report:  apiHandler.NewReportHandler(reportUseCase, cfg.Board.DefaultProject, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, bufferProcessor.Pending, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:         r.Handler,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:   cfg.HTTP.MaxConn,
		Name:            cfg.AppName,
		CloseOnShutdown: true,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
