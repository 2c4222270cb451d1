package main

import (
	"fmt"
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"autotasking/pkg/authz"
	"autotasking/pkg/config"
	"autotasking/pkg/db"
	"autotasking/pkg/gen"
	"autotasking/pkg/hashistack/secretmanager"
	"autotasking/pkg/health"
	"autotasking/pkg/httpapi"
	"autotasking/pkg/llm"
	"autotasking/pkg/logger"
	"autotasking/pkg/minio"
	"autotasking/pkg/otelcol"
	"autotasking/pkg/profiling"
	"autotasking/pkg/server"
	"autotasking/pkg/session"
	"autotasking/services/destination"
	"autotasking/services/draft"
	"autotasking/services/intern"
	"autotasking/services/status"
	"autotasking/services/summary"
	"autotasking/services/task"
	"autotasking/services/video"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		minio.Client,
		llm.Module,
		session.Module,
		authz.Module,
		health.Module,
		fx.Provide(provideStoragePinger),
		fx.Invoke(autoMigrate),
		httpapi.Module,
		intern.ServerModule,
		destination.ServerModule,
		task.ServerModule,
		status.ServerModule,
		draft.ServerModule,
		video.ServerModule,
		summary.ServerModule,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if secretmanager.Enabled() {
		opts = append(opts, secretmanager.Module)
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.AppEnv == "production" {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger}
})

func provideStoragePinger(s *minio.Storage) health.Pinger {
	return s
}

func autoMigrate(cfg *config.Config, gdb *gorm.DB) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}

	models := []any{
		&intern.Intern{},
		&destination.Destination{},
		&task.Task{},
		&task.TaskBatch{},
		&video.Video{},
	}
	models = append(models, status.Models()...)

	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	zap.L().Info("[DB] Schema migrated", zap.Int("tables", len(models)))
	return nil
}
