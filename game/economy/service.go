package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements eat, sell, and buy. Every operation is one transaction:
// a debit and its matching credit either both land or neither does.
type Service struct {
	db      *gorm.DB
	cat     *catalog.Catalog
	players *player.Service
	game    config.GameConfig
	logger  *zap.Logger
}

// NewService creates an economy Service.
func NewService(db *gorm.DB, cat *catalog.Catalog, players *player.Service, game config.GameConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cat: cat, players: players, game: game, logger: logger}
}

// Eat consumes one unit of a consumable item and applies its stat effect.
// Food heals up to the health cap; the designated boost items raise the cap
// or the weapon level.
func (svc *Service) Eat(ctx context.Context, handle, itemName string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	item := svc.cat.ItemByName(itemName)
	if item == nil {
		return "", gameerr.Reject(gameerr.ErrItemNotFound, "You cannot eat %s.", itemName)
	}

	var msg string
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := player.StatsForUpdate(tx, p.ID)
		if err != nil {
			return err
		}

		var upd player.StatsUpdate
		switch item.Class {
		case catalog.ClassFood:
			if stats.Health >= stats.HealthCap {
				return gameerr.Reject(gameerr.ErrPrerequisiteNotMet, "You are already at full health.")
			}
			newHealth := stats.Health + svc.game.HealAmount
			if newHealth > stats.HealthCap {
				newHealth = stats.HealthCap
			}
			upd.Health = player.Int(newHealth)
			msg = fmt.Sprintf("You ate %s and now have %d health!", item.Name, newHealth)
		case catalog.ClassHealthBoost:
			newCap := stats.HealthCap + svc.game.HealthCapBoost
			upd.HealthCap = player.Int(newCap)
			msg = fmt.Sprintf("You used %s! Your health cap is now %d.", item.Name, newCap)
		case catalog.ClassWeaponBoost:
			newLevel := stats.WeaponLevel + svc.game.WeaponBoost
			upd.WeaponLevel = player.Int(newLevel)
			msg = fmt.Sprintf("You used %s! Your weapon level is now %d.", item.Name, newLevel)
		default:
			return gameerr.Reject(gameerr.ErrItemNotFound, "You cannot eat %s.", item.Name)
		}

		if _, err := inventory.AdjustTx(tx, p.ID, item, -1); err != nil {
			if errors.Is(err, gameerr.ErrInsufficientQuantity) {
				return gameerr.Reject(gameerr.ErrInsufficientQuantity, "You do not have any %s.", item.Name)
			}
			return err
		}
		return player.ApplyStatsTx(tx, stats, upd)
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Sell converts one unit of an item into currency. If the proceeds would
// overflow the currency carry limit the whole sale fails.
func (svc *Service) Sell(ctx context.Context, handle, itemName string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	item := svc.cat.ItemByName(itemName)
	if item == nil || item.SellPrice == 0 {
		return "", gameerr.Reject(gameerr.ErrInvalidInput, "You cannot sell %s.", itemName)
	}
	currency, err := svc.currency()
	if err != nil {
		return "", err
	}

	var balance int
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := inventory.AdjustTx(tx, p.ID, item, -1); err != nil {
			if errors.Is(err, gameerr.ErrInsufficientQuantity) {
				return gameerr.Reject(gameerr.ErrInsufficientQuantity, "You do not have any %s to sell.", item.Name)
			}
			return err
		}
		balance, err = inventory.AdjustTx(tx, p.ID, currency, item.SellPrice)
		if err != nil {
			if errors.Is(err, gameerr.ErrCapacityExceeded) {
				return gameerr.Reject(gameerr.ErrCapacityExceeded, "You cannot carry that many %s; the sale is off.", currency.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You sold %s for %d %s and now have %d.",
		item.Name, item.SellPrice, currency.Name, balance), nil
}

// Buy converts currency into one unit of an item at its sell price.
func (svc *Service) Buy(ctx context.Context, handle, itemName string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	item := svc.cat.ItemByName(itemName)
	if item == nil || item.SellPrice == 0 || item.Hostile() || item.Class == catalog.ClassNPC ||
		item.Class == catalog.ClassCurrency {
		return "", gameerr.Reject(gameerr.ErrInvalidInput, "You cannot buy %s.", itemName)
	}
	currency, err := svc.currency()
	if err != nil {
		return "", err
	}

	var newQty int
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := inventory.QuantityTx(tx, p.ID, currency.Name)
		if err != nil {
			return err
		}
		if balance < item.SellPrice {
			return gameerr.Reject(gameerr.ErrInsufficientFunds,
				"You need %d %s for %s but only have %d.", item.SellPrice, currency.Name, item.Name, balance)
		}
		if _, err := inventory.AdjustTx(tx, p.ID, currency, -item.SellPrice); err != nil {
			return err
		}
		newQty, err = inventory.AdjustTx(tx, p.ID, item, 1)
		if err != nil {
			if errors.Is(err, gameerr.ErrCapacityExceeded) {
				return gameerr.Reject(gameerr.ErrCapacityExceeded, "You cannot carry any more %s.", item.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You bought %s for %d %s. You now have %d.",
		item.Name, item.SellPrice, currency.Name, newQty), nil
}

func (svc *Service) currency() (*catalog.Item, error) {
	c := svc.cat.ItemByName(svc.game.CurrencyItem)
	if c == nil {
		return nil, fmt.Errorf("economy: currency item %q missing from catalog", svc.game.CurrencyItem)
	}
	return c, nil
}
