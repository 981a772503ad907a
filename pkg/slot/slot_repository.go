package slot

import (
	"context"
	"errors"
	"sync"

	"farmxchain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	SlotRepository interface {
		GetSlot(ctx context.Context, name string) (*entities.StorageSlot, error)
		SaveSlot(ctx context.Context, slot *entities.StorageSlot) error
		DeleteSlot(ctx context.Context, name string) error
	}

	slotRepository struct {
		db *gorm.DB
	}

	memorySlotRepository struct {
		mu    sync.RWMutex
		slots map[string]entities.StorageSlot
	}
)

// ErrSlotNotFound is returned by repositories for a slot that was never written.
var ErrSlotNotFound = errors.New("slot not found")

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) GetSlot(ctx context.Context, name string) (*entities.StorageSlot, error) {
	var slot entities.StorageSlot
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// SaveSlot overwrites the whole slot.
func (r *slotRepository) SaveSlot(ctx context.Context, slot *entities.StorageSlot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).
		Create(slot).Error
}

func (r *slotRepository) DeleteSlot(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&entities.StorageSlot{}).Error
}

// NewMemorySlotRepository keeps slots in process memory.
func NewMemorySlotRepository() SlotRepository {
	return &memorySlotRepository{slots: make(map[string]entities.StorageSlot)}
}

func (r *memorySlotRepository) GetSlot(_ context.Context, name string) (*entities.StorageSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.slots[name]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &slot, nil
}

func (r *memorySlotRepository) SaveSlot(_ context.Context, slot *entities.StorageSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[slot.Name] = *slot
	return nil
}

func (r *memorySlotRepository) DeleteSlot(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, name)
	return nil
}
