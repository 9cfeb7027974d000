package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
)

// Models is the schema owned by this service, in migration order.
var Models = []interface{}{
	&db_models.Account{},
	&db_models.Donor{},
	&db_models.Donation{},
}

func GormConfig(log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		// Unique violations must surface as gorm.ErrDuplicatedKey; the
		// reconciler depends on it to detect the losing side of a race.
		TranslateError: true,
		Logger:         logger.NewGormLogger(log, gormLogger.Warn, 200*time.Millisecond),
	}
}

func InitPostgresql(dsn string, log *logger.Logger) (*gorm.DB, error) {
	connectionPool, err := gorm.Open(postgres.Open(dsn), GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return connectionPool, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("get database instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("close database connection", "error", err)
	} else {
		log.Info("postgres connection closed")
	}
}
