package dbstore

import (
	"time"

	"github.com/yiblet/spares/internal/store"
)

// StateItemModel represents a client-state key-value pair in the database.
type StateItemModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

// TableName returns the table name for StateItemModel
func (StateItemModel) TableName() string {
	return "client_state"
}

// ToEntry converts the GORM model to a store.Entry
func (m *StateItemModel) ToEntry() *store.Entry {
	return &store.Entry{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedAt: m.UpdatedAt,
	}
}
