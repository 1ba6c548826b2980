package database

import (
	"context"
	"fmt"

	"github.com/sergioamr/farm-management/pkg/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and applies the pool settings from config.
// The returned handle is owned by the caller and released with Close.
func Open(dbConfig *config.DBConfig) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), GormConfig(dbConfig.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	return db, nil
}

// GormConfig is shared by every dialect the repository runs on.
// TranslateError turns dialect unique violations into gorm.ErrDuplicatedKey.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Migrate creates or updates the tables for the provided models
func Migrate(db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// Ping checks that the underlying connection is alive
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func Close(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database object for close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
		return
	}
	log.Info("Database connection closed")
}
