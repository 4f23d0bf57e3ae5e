package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-hrms/internal/app"
	"go-hrms/internal/bootstrap"
	"go-hrms/internal/config"
	"go-hrms/internal/shared/apperror"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	apperror.Init()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("connect infrastructure failed", zap.Error(err))
	}
	defer a.Close()

	modules, err := a.Modules()
	if err != nil {
		logger.Fatal("build modules failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.RunConsumer(ctx, modules); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
