package db_fx

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"colabora/internal/config"
	"colabora/internal/infra"
	"colabora/pkg/logger"
)

var Module = fx.Provide(provideDB)

func provideDB(lc fx.Lifecycle, cfg config.Config, log *logger.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := infra.Migrate(db); err != nil {
			infra.ClosePostgresql(db, log)
			return nil, err
		}
		log.Info("database migrated")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
