package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"drivebox/models"
)

// Open 打开数据库并迁移表结构
//
// 句柄由调用方持有并注入各个服务，不再使用包级全局变量。
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 自动迁移数据库结构
	err = db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.FileAccessLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at: %s", dbPath)
	return db, nil
}
