package model

import "time"

// InventoryEntry is one (player, item) ledger row. Rows are created lazily on
// first acquisition and kept at quantity 0 rather than deleted, so the ledger
// doubles as a "has ever collected" record for travel prerequisites.
type InventoryEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID  int64     `gorm:"uniqueIndex:idx_player_item;not null" json:"player_id"`
	ItemName  string    `gorm:"uniqueIndex:idx_player_item;size:64;not null" json:"item_name"`
	Quantity  int       `gorm:"default:0" json:"quantity"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InventoryEntry) TableName() string { return "inventory" }
