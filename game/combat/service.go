package combat

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	"github.com/kotu-game/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service resolves fights between a player and a catalog enemy.
type Service struct {
	db      *gorm.DB
	cat     *catalog.Catalog
	players *player.Service
	game    config.GameConfig
	logger  *zap.Logger

	// roll returns a uniform value in [0, n). Replaced in tests.
	roll func(n int) int
}

// NewService creates a combat Service.
func NewService(db *gorm.DB, cat *catalog.Catalog, players *player.Service, game config.GameConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cat: cat, players: players, game: game, logger: logger, roll: rand.Intn}
}

// SetRoll replaces the random source. Test hook.
func (svc *Service) SetRoll(roll func(n int) int) { svc.roll = roll }

// Fight resolves a fight against the named enemy in one transaction.
func (svc *Service) Fight(ctx context.Context, handle, enemyName string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	enemy := svc.cat.ItemByName(enemyName)
	if enemy == nil || !enemy.Hostile() {
		return "", gameerr.Reject(gameerr.ErrEnemyNotFound, "There is no enemy called '%s' here.", enemyName)
	}

	var msg string
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := player.StatsForUpdate(tx, p.ID)
		if err != nil {
			return err
		}
		msg, err = svc.ResolveTx(tx, stats, enemy)
		return err
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// WinChance computes the percent chance of victory for the given weapon level
// and bonus die roll against an enemy difficulty, clamped to the configured
// band. Difficulty 0 pins the chance at the upper clamp.
func (svc *Service) WinChance(weaponLevel, bonus, difficulty int) int {
	if difficulty <= 0 {
		return svc.game.FightChanceMax
	}
	chance := int(float64(weaponLevel+bonus) / float64(difficulty) * 100)
	if chance < svc.game.FightChanceMin {
		return svc.game.FightChanceMin
	}
	if chance > svc.game.FightChanceMax {
		return svc.game.FightChanceMax
	}
	return chance
}

// ResolveTx runs one fight inside the caller's transaction against the locked
// stats row. Persistence errors abort the transaction.
func (svc *Service) ResolveTx(tx *gorm.DB, stats *model.PlayerStats, enemy *catalog.Item) (string, error) {
	bonus := svc.roll(svc.game.FightBonusDie) + 1
	chance := svc.WinChance(stats.WeaponLevel, bonus, enemy.Difficulty)

	if svc.roll(100) < chance {
		upd := player.StatsUpdate{XP: player.Int(stats.XP + enemy.Difficulty)}
		if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
			return "", err
		}
		return fmt.Sprintf("You defeated %s and earned %d XP!", enemy.Name, enemy.Difficulty), nil
	}

	newHealth := stats.Health - 1
	if newHealth > 0 {
		upd := player.StatsUpdate{Health: player.Int(newHealth)}
		if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
			return "", err
		}
		return fmt.Sprintf("You failed to defeat %s and lost 1 health! Consider upgrading your weapon.", enemy.Name), nil
	}

	// Death: reset to the revive baseline and take the lumins penalty,
	// clamped so the balance never goes negative.
	upd := player.StatsUpdate{Health: player.Int(svc.game.ReviveHealth)}
	if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
		return "", err
	}
	currency := svc.cat.ItemByName(svc.game.CurrencyItem)
	if currency == nil {
		return "", fmt.Errorf("combat: currency item %q missing from catalog", svc.game.CurrencyItem)
	}
	balance, err := inventory.QuantityTx(tx, stats.PlayerID, currency.Name)
	if err != nil {
		return "", err
	}
	penalty := svc.game.DeathPenalty
	if penalty > balance {
		penalty = balance
	}
	if penalty > 0 {
		if _, err := inventory.AdjustTx(tx, stats.PlayerID, currency, -penalty); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("You were defeated by %s and lost %d %s! Rest up before fighting again.",
		enemy.Name, penalty, currency.Name), nil
}
