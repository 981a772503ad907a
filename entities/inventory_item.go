package entities

import (
	"time"

	"github.com/google/uuid"
)

type InventoryItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Product        string    `gorm:"size:128;uniqueIndex" json:"product"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	Unit           string    `gorm:"size:16" json:"unit"`
	Location       string    `json:"location"`
	ExpiryDate     time.Time `json:"expiry_date"`
	PricePerUnit   float64   `json:"price_per_unit"`

	Timestamp
}
