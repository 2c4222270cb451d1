package logger

import (
	"context"
	"os"

	"autotasking/pkg/config"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v2"
)

var Module = fx.Module("zap",
	fx.Provide(
		New,
	),
)

type ConfigParams struct {
	fx.In
	Lc  fx.Lifecycle `optional:"true"`
	Cfg *config.Config
}

func New(p ConfigParams) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(p.Cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	if p.Cfg.AppEnv == "production" {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.StacktraceKey = "stacktrace"
		encoderConfig.LevelKey = "severity"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.CallerKey = "caller"
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if p.Cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   p.Cfg.Log.File,
			MaxSize:    p.Cfg.Log.MaxSizeMB,
			MaxBackups: p.Cfg.Log.MaxBackups,
			MaxAge:     p.Cfg.Log.MaxAgeDays,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))

		if p.Lc != nil {
			p.Lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return rotator.Close()
				},
			})
		}
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(
		zap.String("env", p.Cfg.AppEnv),
		zap.String("service_name", p.Cfg.AppName),
		zap.String("version", p.Cfg.AppVersion),
	)

	zap.ReplaceGlobals(log)

	return log, nil
}

// WithTrace returns the global logger tagged with the span carried by ctx.
func WithTrace(ctx context.Context) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return zap.L()
	}
	return zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
