package skill

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/game/combat"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Success chance bands by skill level.
const (
	bandNovice = 35 // level <= 25
	bandAdept  = 50 // level <= 50
	bandExpert = 75 // level <= 75
	bandMaster = 99 // above 75
)

// Threshold returns the percent success chance for a skill level.
func Threshold(level int) int {
	switch {
	case level <= 25:
		return bandNovice
	case level <= 50:
		return bandAdept
	case level <= 75:
		return bandExpert
	default:
		return bandMaster
	}
}

// Service resolves skill attempts: a probability check, a practice credit,
// and an item draw from the player's current location.
type Service struct {
	db      *gorm.DB
	cat     *catalog.Catalog
	players *player.Service
	fights  *combat.Service
	logger  *zap.Logger

	// roll returns a uniform value in [0, n). Replaced in tests.
	roll func(n int) int
}

// NewService creates a skill Service.
func NewService(db *gorm.DB, cat *catalog.Catalog, players *player.Service, fights *combat.Service, logger *zap.Logger) *Service {
	return &Service{db: db, cat: cat, players: players, fights: fights, logger: logger, roll: rand.Intn}
}

// SetRoll replaces the random source. Test hook.
func (svc *Service) SetRoll(roll func(n int) int) { svc.roll = roll }

// Attempt resolves one skill action. On success the skill level rises by one
// before the item draw, so even an empty pool or a full pack keeps the
// practice credit. A failed check changes nothing.
func (svc *Service) Attempt(ctx context.Context, handle, skillName, itemCategory string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}

	var msg string
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := player.StatsForUpdate(tx, p.ID)
		if err != nil {
			return err
		}
		level, ok := player.SkillLevel(stats, skillName)
		if !ok {
			return gameerr.Reject(gameerr.ErrInvalidInput, "Unknown skill '%s'.", skillName)
		}

		if svc.roll(100) >= Threshold(level) {
			msg = "You failed to capture anything this time."
			return nil
		}

		var upd player.StatsUpdate
		upd.SetSkill(skillName, level+1)
		if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
			return err
		}

		pool := svc.cat.ItemsByTypeAndLocation(itemCategory, stats.CurrentLocation)
		if len(pool) == 0 {
			msg = fmt.Sprintf("You searched hard but found nothing for %s here.", itemCategory)
			return nil
		}
		item := pool[svc.roll(len(pool))]

		if item.Hostile() {
			msg, err = svc.fights.ResolveTx(tx, stats, item)
			return err
		}

		newQty, err := inventory.AdjustTx(tx, p.ID, item, 1)
		if err != nil {
			if errors.Is(err, gameerr.ErrCapacityExceeded) {
				msg = fmt.Sprintf("You found a %s but cannot carry any more!", item.Name)
				return nil
			}
			return err
		}
		msg = fmt.Sprintf("You got a %s! You now have %d.", item.Name, newQty)
		if item.Class == catalog.ClassNPC {
			if loc := svc.cat.LocationByID(stats.CurrentLocation); loc != nil && loc.NarrativeText != "" {
				msg = fmt.Sprintf("%s %s says: %s", msg, item.Name, loc.NarrativeText)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}
