package logger_fx

import (
	"context"

	"go.uber.org/fx"

	"colabora/internal/config"
	"colabora/pkg/logger"
)

var Module = fx.Provide(provideLogger)

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*logger.Logger, error) {
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync fails on stdout/stderr on some platforms; nothing to do about it.
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}
