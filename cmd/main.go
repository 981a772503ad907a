package main

import (
	"os"
	"os/signal"
	"syscall"

	"farmxchain/cmd/config"
	migration "farmxchain/cmd/database/migrate"
	"farmxchain/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func main() {
	utils.LoadConfig()

	var db *gorm.DB
	if utils.GetConfig("ORDER_STORE") != config.OrderStoreMemory {
		var err error
		db, err = config.ConnectDB()
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		if err := migration.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to start app: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	port := utils.GetConfigOrDefault("APP_PORT", "8080")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
}
