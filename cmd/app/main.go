package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/config"
	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/mail"
	"github.com/recipebox/recipebox-back/internal/service"
	"github.com/recipebox/recipebox-back/internal/tasks"
	"github.com/recipebox/recipebox-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			newLogger,
			db.NewGormClient,
			mail.NewSMTPMailer,
			newPool,
			tasks.NewDispatcher,
			newService,
			transport.NewHTTPServer,
		),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)

	app.Run()
}

func newLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func newPool(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) *tasks.Pool {
	return tasks.NewPool(lc, cfg.WorkerCount, logger)
}

func newService(gdb *gorm.DB, logger *zap.SugaredLogger, cfg *config.Config, dispatcher *tasks.Dispatcher) *service.Service {
	return service.New(gdb, logger, cfg, dispatcher)
}
