package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/api/handler"
	"github.com/NarcisseDedome/gestionpersonnel/internal/api/router"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/database"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
	applogger "github.com/NarcisseDedome/gestionpersonnel/pkg/logger"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/redis"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("PERSONNEL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 4. redis is optional: without it there is no stats cache, no token
	// revocation and no login rate limit.
	svcDeps := service.Deps{}
	routerDeps := router.Deps{}
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	} else {
		svcDeps.Cache = rdb
		svcDeps.Blacklist = rdb
		routerDeps.Revocation = rdb
		routerDeps.RateLimiter = rdb
	}

	// 5. metrics
	m := metrics.New(prometheus.DefaultRegisterer)
	svcDeps.Metrics = m
	routerDeps.Metrics = m

	// 6. wiring: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, svcDeps, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, routerDeps, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
