package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetInventory = "inventory retrieved successfully"
	MessageFailedGetInventory  = "failed to retrieve inventory"

	ErrInventoryItemNotFound = errors.New("inventory item not found")
)

// LowStockThreshold is the quantity at or below which an item is flagged as low.
const LowStockThreshold = 30

type (
	InventoryItemResponse struct {
		ID             string    `json:"id"`
		Product        string    `json:"product"`
		QuantityOnHand int       `json:"quantity_on_hand"`
		Unit           string    `json:"unit"`
		Location       string    `json:"location"`
		ExpiryDate     time.Time `json:"expiry_date"`
		StockStatus    string    `json:"stock_status"`
	}

	InventoryAdjustment struct {
		Product   string `json:"product"`
		Requested int    `json:"requested"`
		Applied   int    `json:"applied"`
		Remaining int    `json:"remaining"`
		Shortfall int    `json:"shortfall,omitempty"`
	}

	// FulfillmentReport describes the inventory side effect of a Fulfilled transition.
	// Unmatched lists line items that had no inventory record and were skipped.
	FulfillmentReport struct {
		OrderID   string                `json:"order_id"`
		Adjusted  []InventoryAdjustment `json:"adjusted"`
		Unmatched []string              `json:"unmatched,omitempty"`
	}
)

func StockStatus(quantity int) string {
	if quantity > LowStockThreshold {
		return "Good"
	}
	return "Low Stock"
}
