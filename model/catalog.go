package model

// Item is a catalog row. Read-only to the engine; seeded from the data files.
// SellPrice 0 marks an item as non-tradeable and non-edible. For enemies and
// bosses Difficulty drives combat; LocationRestriction 0 means available
// everywhere.
type Item struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Type                string `gorm:"size:32;not null" json:"type"`
	SubType             string `gorm:"size:32;not null" json:"sub_type"`
	SellPrice           int    `gorm:"default:0" json:"sell_price"`
	CarryLimit          int    `gorm:"default:1" json:"carry_limit"`
	LocationRestriction int    `gorm:"default:0" json:"location_restriction"`
	Difficulty          int    `gorm:"default:0" json:"difficulty"`
}

func (Item) TableName() string { return "items" }

// Location is a catalog row describing one stop on the journey.
type Location struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:64;not null" json:"name"`
	NarrativeText string `gorm:"type:text" json:"narrative_text"`
	XPThreshold   int    `gorm:"default:0" json:"xp_threshold"`
}

func (Location) TableName() string { return "locations" }
