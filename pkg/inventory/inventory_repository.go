package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"farmxchain/domain"
	"farmxchain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	InventoryRepository interface {
		GetItems(ctx context.Context) ([]*entities.InventoryItem, error)
		GetItemByProduct(ctx context.Context, product string) (*entities.InventoryItem, error)
		// DecrementItems takes every line out of stock in one unit of work.
		// Lines without a matching product are returned as unmatched.
		DecrementItems(ctx context.Context, lines []domain.OrderItem) ([]domain.InventoryAdjustment, []string, error)
		RestockItems(ctx context.Context, adjustments []domain.InventoryAdjustment) error
		SeedItems(ctx context.Context, items []*entities.InventoryItem) error
	}

	inventoryRepository struct {
		db *gorm.DB
	}

	memoryInventoryRepository struct {
		mu    sync.RWMutex
		items map[string]entities.InventoryItem
	}
)

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetItems(ctx context.Context) ([]*entities.InventoryItem, error) {
	var items []*entities.InventoryItem
	if err := r.db.WithContext(ctx).Order("product asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) GetItemByProduct(ctx context.Context, product string) (*entities.InventoryItem, error) {
	var item entities.InventoryItem
	if err := r.db.WithContext(ctx).Where("product = ?", product).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInventoryItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) DecrementItems(ctx context.Context, lines []domain.OrderItem) ([]domain.InventoryAdjustment, []string, error) {
	var (
		adjusted  []domain.InventoryAdjustment
		unmatched []string
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adjusted, unmatched = nil, nil
		for _, line := range lines {
			var item entities.InventoryItem
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("product = ?", line.Name).
				First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unmatched = append(unmatched, line.Name)
				continue
			}
			if err != nil {
				return err
			}

			adj := decrement(line, item.QuantityOnHand)
			err = tx.Model(&entities.InventoryItem{}).
				Where("id = ?", item.ID).
				UpdateColumn("quantity_on_hand", gorm.Expr("GREATEST(quantity_on_hand - ?, 0)", adj.Applied)).Error
			if err != nil {
				return err
			}
			adjusted = append(adjusted, adj)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return adjusted, unmatched, nil
}

func (r *inventoryRepository) RestockItems(ctx context.Context, adjustments []domain.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, adj := range adjustments {
			if adj.Applied == 0 {
				continue
			}
			err := tx.Model(&entities.InventoryItem{}).
				Where("product = ?", adj.Product).
				UpdateColumn("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", adj.Applied)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// decrement takes as much of line as onHand allows.
func decrement(line domain.OrderItem, onHand int) domain.InventoryAdjustment {
	applied := max(min(line.Quantity, onHand), 0)
	return domain.InventoryAdjustment{
		Product:   line.Name,
		Requested: line.Quantity,
		Applied:   applied,
		Remaining: onHand - applied,
		Shortfall: line.Quantity - applied,
	}
}

// SeedItems inserts items only when the table is empty.
func (r *inventoryRepository) SeedItems(ctx context.Context, items []*entities.InventoryItem) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.InventoryItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func NewMemoryInventoryRepository() InventoryRepository {
	return &memoryInventoryRepository{items: make(map[string]entities.InventoryItem)}
}

func (r *memoryInventoryRepository) GetItems(_ context.Context) ([]*entities.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entities.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		item := item
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	return items, nil
}

func (r *memoryInventoryRepository) GetItemByProduct(_ context.Context, product string) (*entities.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[product]
	if !ok {
		return nil, domain.ErrInventoryItemNotFound
	}
	return &item, nil
}

func (r *memoryInventoryRepository) DecrementItems(_ context.Context, lines []domain.OrderItem) ([]domain.InventoryAdjustment, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		adjusted  []domain.InventoryAdjustment
		unmatched []string
	)
	for _, line := range lines {
		item, ok := r.items[line.Name]
		if !ok {
			unmatched = append(unmatched, line.Name)
			continue
		}
		adj := decrement(line, item.QuantityOnHand)
		item.QuantityOnHand = adj.Remaining
		r.items[line.Name] = item
		adjusted = append(adjusted, adj)
	}
	return adjusted, unmatched, nil
}

func (r *memoryInventoryRepository) RestockItems(_ context.Context, adjustments []domain.InventoryAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, adj := range adjustments {
		item, ok := r.items[adj.Product]
		if !ok {
			return domain.ErrInventoryItemNotFound
		}
		item.QuantityOnHand += adj.Applied
		r.items[adj.Product] = item
	}
	return nil
}

func (r *memoryInventoryRepository) SeedItems(_ context.Context, items []*entities.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) > 0 {
		return nil
	}
	for _, item := range items {
		r.items[item.Product] = *item
	}
	return nil
}
