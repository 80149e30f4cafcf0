package database

import (
	"fmt"

	"platelog/config"
	"platelog/logger"
	"platelog/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schemaVersion is bumped on incompatible FoodEntry layout changes. The log
// is a non-critical personal record, so migration is destructive: on a
// version mismatch all tables are dropped and recreated.
const schemaVersion = 1

type schemaInfo struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

func (schemaInfo) TableName() string { return "schema_info" }

var DB *gorm.DB

// InitDB opens the sqlite database from DB_PATH and runs migrations.
func InitDB() error {
	path := config.GetEnv("DB_PATH", "platelog.db")
	db, err := Open(path)
	if err != nil {
		return err
	}
	DB = db
	logger.Info("Database ready", "path", path)
	return nil
}

// Open opens a sqlite database at the given path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows a single writer; one pooled connection avoids lock
	// contention and keeps in-memory databases on one handle.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaInfo{}); err != nil {
		return fmt.Errorf("failed to migrate schema info: %w", err)
	}

	var info schemaInfo
	err := db.First(&info).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		info = schemaInfo{Version: schemaVersion}
		if err := db.Create(&info).Error; err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case info.Version != schemaVersion:
		logger.Warn("Schema version changed, resetting database",
			"stored", info.Version, "current", schemaVersion)
		if err := db.Migrator().DropTable(&models.FoodEntry{}); err != nil {
			return fmt.Errorf("failed to drop outdated tables: %w", err)
		}
		info.Version = schemaVersion
		if err := db.Save(&info).Error; err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	if err := db.AutoMigrate(&models.FoodEntry{}); err != nil {
		return fmt.Errorf("failed to migrate food entries: %w", err)
	}
	return nil
}
