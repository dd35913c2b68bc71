// models/kv_entry.go
package models

import "time"

// KVEntry backs the SQL implementation of the durable key/value store.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }
