package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/gameerr"
	"github.com/kotu-game/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the inventory ledger: capacity-checked, per-(player,item)
// atomic adjustments.
type Service struct {
	db     *gorm.DB
	cat    *catalog.Catalog
	logger *zap.Logger
}

// NewService creates an inventory Service.
func NewService(db *gorm.DB, cat *catalog.Catalog, logger *zap.Logger) *Service {
	return &Service{db: db, cat: cat, logger: logger}
}

// Result is the outcome of an Adjust call. Narrative is set only when the
// adjusted item is an NPC encounter; it is flavor text, not state.
type Result struct {
	NewQuantity int
	Narrative   string
}

// Adjust changes the player's quantity of itemName by delta in its own
// transaction, enforcing the item's carry limit in both directions.
func (svc *Service) Adjust(ctx context.Context, playerID int64, itemName string, delta int) (Result, error) {
	item := svc.cat.ItemByName(itemName)
	if item == nil {
		return Result{}, fmt.Errorf("%w: %s", gameerr.ErrItemNotFound, itemName)
	}

	var newQty int
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		newQty, err = AdjustTx(tx, playerID, item, delta)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{NewQuantity: newQty}
	if item.Class == catalog.ClassNPC {
		res.Narrative = svc.NarrativeFor(ctx, playerID, item)
	}
	return res, nil
}

// AdjustTx is the composable form of Adjust for callers that already hold a
// transaction. The ledger row is read under a row lock so concurrent
// adjustments to the same (player, item) pair serialize.
func AdjustTx(tx *gorm.DB, playerID int64, item *catalog.Item, delta int) (int, error) {
	var entry model.InventoryEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND item_name = ?", playerID, item.Name).
		First(&entry).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = model.InventoryEntry{PlayerID: playerID, ItemName: item.Name, Quantity: 0}
	default:
		return 0, err
	}

	newQty := entry.Quantity + delta
	if delta > 0 && newQty > item.CarryLimit {
		return entry.Quantity, fmt.Errorf("%w: %s holds at most %d",
			gameerr.ErrCapacityExceeded, item.Name, item.CarryLimit)
	}
	if delta < 0 && newQty < 0 {
		return entry.Quantity, fmt.Errorf("%w: %s", gameerr.ErrInsufficientQuantity, item.Name)
	}

	if entry.ID == 0 {
		entry.Quantity = newQty
		if err := tx.Create(&entry).Error; err != nil {
			return 0, err
		}
	} else if err := tx.Model(&entry).Update("quantity", newQty).Error; err != nil {
		return 0, err
	}
	return newQty, nil
}

// Quantity returns the player's current quantity of itemName (0 when no row).
func (svc *Service) Quantity(ctx context.Context, playerID int64, itemName string) (int, error) {
	return QuantityTx(svc.db.WithContext(ctx), playerID, itemName)
}

// QuantityTx reads a quantity inside an existing transaction, without locking.
func QuantityTx(tx *gorm.DB, playerID int64, itemName string) (int, error) {
	var entry model.InventoryEntry
	err := tx.Where("player_id = ? AND item_name = ?", playerID, itemName).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Quantity, nil
}

// List returns the player's full ledger.
func (svc *Service) List(ctx context.Context, playerID int64) ([]model.InventoryEntry, error) {
	var entries []model.InventoryEntry
	err := svc.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("item_name").
		Find(&entries).Error
	return entries, err
}

// MissingLocationItems returns the names of collectible items flagged for the
// location that the player has never acquired. A ledger row at quantity 0
// still counts as collected; rows are never deleted.
func (svc *Service) MissingLocationItems(ctx context.Context, playerID int64, locationID int) ([]string, error) {
	return MissingLocationItemsTx(svc.db.WithContext(ctx), svc.cat, playerID, locationID)
}

// MissingLocationItemsTx is the transactional form of MissingLocationItems.
func MissingLocationItemsTx(tx *gorm.DB, cat *catalog.Catalog, playerID int64, locationID int) ([]string, error) {
	required := cat.CollectiblesForLocation(locationID)
	if len(required) == 0 {
		return nil, nil
	}
	names := make([]string, len(required))
	for i, it := range required {
		names[i] = it.Name
	}

	var held []string
	err := tx.Model(&model.InventoryEntry{}).
		Where("player_id = ? AND item_name IN ?", playerID, names).
		Pluck("item_name", &held).Error
	if err != nil {
		return nil, err
	}

	heldSet := make(map[string]bool, len(held))
	for _, n := range held {
		heldSet[strings.ToLower(n)] = true
	}
	var missing []string
	for _, n := range names {
		if !heldSet[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

// NarrativeFor builds the NPC conversation line from the player's current
// location. Failures here only cost flavor text, never the adjustment.
func (svc *Service) NarrativeFor(ctx context.Context, playerID int64, item *catalog.Item) string {
	var stats model.PlayerStats
	if err := svc.db.WithContext(ctx).
		Where("player_id = ?", playerID).First(&stats).Error; err != nil {
		svc.logger.Warn("npc narrative lookup failed", zap.Error(err))
		return ""
	}
	loc := svc.cat.LocationByID(stats.CurrentLocation)
	if loc == nil || loc.NarrativeText == "" {
		return ""
	}
	return fmt.Sprintf("%s says: %s", item.Name, loc.NarrativeText)
}
