package player

import (
	"fmt"
	"strings"

	"github.com/kotu-game/server/model"
	"gorm.io/gorm"
)

// StatsUpdate is a typed partial update of the stats row. Only the mutable
// columns below exist; there is no free-form field map.
type StatsUpdate struct {
	Health          *int
	HealthCap       *int
	WeaponLevel     *int
	FightingSkill   *int
	LifeSkill       *int
	FishingSkill    *int
	HuntingSkill    *int
	SearchingSkill  *int
	CurrentLocation *int
	HighestLocation *int
	XP              *int
}

// Int is a convenience for building optional fields.
func Int(v int) *int { return &v }

func (u StatsUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	set := func(name string, v *int) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("health", u.Health)
	set("health_cap", u.HealthCap)
	set("weapon_level", u.WeaponLevel)
	set("fighting_skill", u.FightingSkill)
	set("life_skill", u.LifeSkill)
	set("fishing_skill", u.FishingSkill)
	set("hunting_skill", u.HuntingSkill)
	set("searching_skill", u.SearchingSkill)
	set("current_location", u.CurrentLocation)
	set("highest_location", u.HighestLocation)
	set("xp", u.XP)
	return cols
}

// merged returns a copy of current with the update applied, for invariant checks.
func (u StatsUpdate) merged(current model.PlayerStats) model.PlayerStats {
	apply := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&current.Health, u.Health)
	apply(&current.HealthCap, u.HealthCap)
	apply(&current.WeaponLevel, u.WeaponLevel)
	apply(&current.FightingSkill, u.FightingSkill)
	apply(&current.LifeSkill, u.LifeSkill)
	apply(&current.FishingSkill, u.FishingSkill)
	apply(&current.HuntingSkill, u.HuntingSkill)
	apply(&current.SearchingSkill, u.SearchingSkill)
	apply(&current.CurrentLocation, u.CurrentLocation)
	apply(&current.HighestLocation, u.HighestLocation)
	apply(&current.XP, u.XP)
	return current
}

// ApplyStatsTx writes a partial stats update inside tx. current must be the
// row-locked snapshot the caller read with StatsForUpdate; the merged result is
// checked against the stats invariants before anything is written.
func ApplyStatsTx(tx *gorm.DB, current *model.PlayerStats, u StatsUpdate) error {
	next := u.merged(*current)
	if next.Health < 0 || next.Health > next.HealthCap {
		return fmt.Errorf("player: health %d outside [0,%d]", next.Health, next.HealthCap)
	}
	if next.CurrentLocation > next.HighestLocation {
		return fmt.Errorf("player: current location %d beyond highest %d",
			next.CurrentLocation, next.HighestLocation)
	}
	cols := u.columns()
	if len(cols) == 0 {
		return nil
	}
	if err := tx.Model(&model.PlayerStats{}).
		Where("player_id = ?", current.PlayerID).
		Updates(cols).Error; err != nil {
		return err
	}
	*current = next
	return nil
}

// SkillLevel returns the level of the named skill, or false for an unknown name.
func SkillLevel(s *model.PlayerStats, skill string) (int, bool) {
	switch strings.ToLower(skill) {
	case "fighting":
		return s.FightingSkill, true
	case "life":
		return s.LifeSkill, true
	case "fishing":
		return s.FishingSkill, true
	case "hunting":
		return s.HuntingSkill, true
	case "searching":
		return s.SearchingSkill, true
	}
	return 0, false
}

// SetSkill stages the named skill on the update. Returns false for an unknown name.
func (u *StatsUpdate) SetSkill(skill string, level int) bool {
	switch strings.ToLower(skill) {
	case "fighting":
		u.FightingSkill = Int(level)
	case "life":
		u.LifeSkill = Int(level)
	case "fishing":
		u.FishingSkill = Int(level)
	case "hunting":
		u.HuntingSkill = Int(level)
	case "searching":
		u.SearchingSkill = Int(level)
	default:
		return false
	}
	return true
}
