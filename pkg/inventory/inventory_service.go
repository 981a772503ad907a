package inventory

import (
	"context"
	"time"

	"farmxchain/domain"
	"farmxchain/entities"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	InventoryService interface {
		GetInventory(ctx context.Context) ([]domain.InventoryItemResponse, error)
		ApplyFulfillment(ctx context.Context, order domain.Order) (domain.FulfillmentReport, error)
		RevertFulfillment(ctx context.Context, report domain.FulfillmentReport) error
		GetInventoryValue(ctx context.Context) (float64, int, error)
	}

	inventoryService struct {
		inventoryRepository InventoryRepository
	}
)

func NewInventoryService(inventoryRepository InventoryRepository) InventoryService {
	return &inventoryService{inventoryRepository: inventoryRepository}
}

func (s *inventoryService) GetInventory(ctx context.Context) ([]domain.InventoryItemResponse, error) {
	items, err := s.inventoryRepository.GetItems(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]domain.InventoryItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, domain.InventoryItemResponse{
			ID:             item.ID.String(),
			Product:        item.Product,
			QuantityOnHand: item.QuantityOnHand,
			Unit:           item.Unit,
			Location:       item.Location,
			ExpiryDate:     item.ExpiryDate,
			StockStatus:    domain.StockStatus(item.QuantityOnHand),
		})
	}
	return response, nil
}

// ApplyFulfillment decrements stock for every line of a fulfilled order.
// Lines without a matching product are skipped and listed in Unmatched.
// Stock never goes below zero; the missing amount is reported as Shortfall.
func (s *inventoryService) ApplyFulfillment(ctx context.Context, order domain.Order) (domain.FulfillmentReport, error) {
	adjusted, unmatched, err := s.inventoryRepository.DecrementItems(ctx, order.Items)
	if err != nil {
		return domain.FulfillmentReport{}, err
	}

	for _, name := range unmatched {
		log.Warnf("order %s: no inventory for %q, decrement skipped", order.ID, name)
	}
	for _, adj := range adjusted {
		if adj.Shortfall > 0 {
			log.Warnf("order %s: %s short by %d", order.ID, adj.Product, adj.Shortfall)
		}
	}
	return domain.FulfillmentReport{OrderID: order.ID, Adjusted: adjusted, Unmatched: unmatched}, nil
}

// RevertFulfillment puts back what ApplyFulfillment took.
func (s *inventoryService) RevertFulfillment(ctx context.Context, report domain.FulfillmentReport) error {
	return s.inventoryRepository.RestockItems(ctx, report.Adjusted)
}

// GetInventoryValue returns the stock value and how many items are low on stock.
func (s *inventoryService) GetInventoryValue(ctx context.Context) (float64, int, error) {
	items, err := s.inventoryRepository.GetItems(ctx)
	if err != nil {
		return 0, 0, err
	}

	value := decimal.Zero
	low := 0
	for _, item := range items {
		value = value.Add(decimal.NewFromFloat(item.PricePerUnit).Mul(decimal.NewFromInt(int64(item.QuantityOnHand))))
		if domain.StockStatus(item.QuantityOnHand) != "Good" {
			low++
		}
	}
	return value.Round(2).InexactFloat64(), low, nil
}

// DefaultInventory is the distributor warehouse stock seeded on first start.
func DefaultInventory() []*entities.InventoryItem {
	date := func(s string) time.Time {
		t, _ := time.Parse(domain.OrderDateLayout, s)
		return t
	}
	return []*entities.InventoryItem{
		{ID: uuid.New(), Product: "Organic Tomatoes", QuantityOnHand: 120, Unit: "kg", Location: "Warehouse A", ExpiryDate: date("2025-09-10"), PricePerUnit: 2.5},
		{ID: uuid.New(), Product: "Bell Peppers", QuantityOnHand: 80, Unit: "kg", Location: "Warehouse B", ExpiryDate: date("2025-09-05"), PricePerUnit: 3.0},
		{ID: uuid.New(), Product: "Carrots", QuantityOnHand: 60, Unit: "kg", Location: "Warehouse A", ExpiryDate: date("2025-09-15"), PricePerUnit: 1.8},
		{ID: uuid.New(), Product: "Banana", QuantityOnHand: 150, Unit: "kg", Location: "Warehouse B", ExpiryDate: date("2025-09-08"), PricePerUnit: 1.8},
	}
}
