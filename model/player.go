package model

import "time"

// Player is a registered chat viewer. Created once on !play and immutable
// afterwards except for the external-ID backfill.
type Player struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Handle     string    `gorm:"uniqueIndex;size:64;not null" json:"handle"`
	ExternalID string    `gorm:"size:64" json:"external_id"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// PlayerStats holds all mutable per-player progression state, one row per player.
// health stays within [0, health_cap]; current_location never exceeds
// highest_location.
type PlayerStats struct {
	PlayerID        int64     `gorm:"primaryKey" json:"player_id"`
	Health          int       `gorm:"not null" json:"health"`
	HealthCap       int       `gorm:"not null" json:"health_cap"`
	WeaponLevel     int       `gorm:"default:1" json:"weapon_level"`
	FightingSkill   int       `gorm:"default:0" json:"fighting_skill"`
	LifeSkill       int       `gorm:"default:0" json:"life_skill"`
	FishingSkill    int       `gorm:"default:0" json:"fishing_skill"`
	HuntingSkill    int       `gorm:"default:0" json:"hunting_skill"`
	SearchingSkill  int       `gorm:"default:0" json:"searching_skill"`
	CurrentLocation int       `gorm:"default:1" json:"current_location"`
	HighestLocation int       `gorm:"default:1" json:"highest_location"`
	XP              int       `gorm:"default:0" json:"xp"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PlayerStats) TableName() string { return "player_stats" }
