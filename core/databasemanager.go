package core

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

type DatabaseManager struct {
	DB       *gorm.DB
	LogLevel LogLevel
}

// New opens the connection pool. dsn must include parseTime=true.
func New(dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	gormLogLevel := logger.Silent
	switch level {
	case LogLevelError:
		gormLogLevel = logger.Error
	case LogLevelWarn:
		gormLogLevel = logger.Warn
	case LogLevelInfo:
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{DB: db, LogLevel: level}, nil
}

func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates/updates the attendance tables. The guard against duplicate
// open entries is a generated column + unique index (see ClockEntry).
func (dm *DatabaseManager) Migrate() error {
	return dm.DB.AutoMigrate(
		&Shop{},
		&Employee{},
		&ClockEntry{},
		&RemoteApprovalRequest{},
		&StandingApproval{},
	)
}
