package config

import (
	"fmt"
	"time"

	"farmxchain/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// connectAttempts bounds how long startup waits for postgres: 1s, 2s, 4s, ...
const connectAttempts = 6

func ConnectDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Jakarta",
		utils.GetConfig("DB_HOST"),
		utils.GetConfig("DB_USER"),
		utils.GetConfig("DB_PASSWORD"),
		utils.GetConfig("DB_NAME"),
		utils.GetConfig("DB_PORT"),
		utils.GetConfigOrDefault("DB_SSLMODE", "disable"),
	)

	var (
		db  *gorm.DB
		err error
	)
	waitInterval := 1 * time.Second
	for attempt := 1; ; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			return nil, fmt.Errorf("database connection failed after %d attempts: %w", attempt, err)
		}
		log.Warnf("database connection failed, retrying in %v: %v", waitInterval, err)
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}
