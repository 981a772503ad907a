package entities

import (
	"time"

	"github.com/google/uuid"
)

// OrderEvent is one row of the append-only order ledger.
type OrderEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq        int64     `gorm:"uniqueIndex;not null" json:"seq"`
	Log        string    `gorm:"size:64;index" json:"log"`
	Kind       string    `gorm:"size:32" json:"kind"` // placed, status_changed
	OrderID    string    `gorm:"size:64;index" json:"order_id"`
	FromStatus string    `gorm:"size:32" json:"from_status,omitempty"`
	ToStatus   string    `gorm:"size:32" json:"to_status"`
	Payload    string    `gorm:"type:text" json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
