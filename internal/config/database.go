package config

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/resume-critic/internal/models"
)

// DSN renders the libpq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode,
	)
}

// OpenAuditDB connects the critique run audit store and migrates its
// table. It returns a nil DB when auditing is disabled.
func OpenAuditDB(cfg DatabaseConfig, debug bool, log zerolog.Logger) (*gorm.DB, error) {
	if !cfg.Enabled {
		log.Info().Msg("ℹ️ Run auditing disabled")
		return nil, nil
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database %s/%s: %w", cfg.Host, cfg.DBName, err)
	}

	if err := db.AutoMigrate(&models.CritiqueRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate critique_runs: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("✅ Audit database ready")
	return db, nil
}
