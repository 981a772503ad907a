package migration

import (
	"context"
	"fmt"
	"log"

	"farmxchain/entities"
	"farmxchain/pkg/inventory"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.StorageSlot{}); err != nil {
		log.Fatalf("Error migrating storage slot database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.OrderEvent{}); err != nil {
		log.Fatalf("Error migrating order event database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.InventoryItem{}); err != nil {
		log.Fatalf("Error migrating inventory item database: %v", err)
		return err
	}

	if err := inventory.NewInventoryRepository(db).SeedItems(context.Background(), inventory.DefaultInventory()); err != nil {
		log.Fatalf("Error seeding inventory: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
