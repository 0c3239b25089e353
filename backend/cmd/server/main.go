/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 15:55:11
 * @FilePath: \cs-news-portal\backend\cmd\server\main.go
 * @LastEditTime: 2026-10-16 11:02:37
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cs-news-portal/backend/internal/app"
	"cs-news-portal/backend/internal/bootstrap"
	"cs-news-portal/backend/internal/config"
	appLogger "cs-news-portal/backend/internal/infra/logger"
	"cs-news-portal/backend/internal/infra/metrics"

	"go.uber.org/zap"
)

// buildApplication 在测试中可替换。
var buildApplication = bootstrap.BuildApplication

func main() {
	config.LoadEnvFiles()

	if _, err := appLogger.Init(); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger := appLogger.S().With("component", "server")

	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, logger, config.LoadRuntimeFlags())
	stop()
	appLogger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run 负责资源的完整生命周期：任何启动失败都会先释放已打开的连接再返回错误。
func run(ctx context.Context, logger *zap.SugaredLogger, flags config.RuntimeFlags) error {
	logger.Infow("starting news portal", "mode", flags.Mode, "port", flags.Server.Port)

	resources, err := app.InitResources(ctx, logger, flags)
	if err != nil {
		logger.Errorw("init resources failed", "error", err)
		return fmt.Errorf("init resources: %w", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			logger.Warnw("resource cleanup error", "error", err)
		}
	}()

	application, err := buildApplication(ctx, logger, resources, flags)
	if err != nil {
		logger.Errorw("build application failed", "error", err)
		return fmt.Errorf("build application: %w", err)
	}

	srv := &http.Server{
		Addr:              flags.Server.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			logger.Errorw("http server stopped unexpectedly", "error", err)
			runErr = fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
		logger.Infow("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), flags.Server.ShutdownDeadline)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("graceful shutdown failed", "error", err)
	}
	logger.Infow("server stopped")
	return runErr
}
