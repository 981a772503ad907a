package entities

import "time"

// StorageSlot is one named shared slot. Value holds the whole serialized JSON
// document; writers always replace it.
type StorageSlot struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedBy string    `gorm:"size:128" json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
