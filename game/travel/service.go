package travel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service enforces the location progression gate: free lateral movement below
// the highest unlocked location, one-step frontier travel above it.
type Service struct {
	db      *gorm.DB
	cat     *catalog.Catalog
	players *player.Service
	logger  *zap.Logger
}

// NewService creates a travel Service.
func NewService(db *gorm.DB, cat *catalog.Catalog, players *player.Service, logger *zap.Logger) *Service {
	return &Service{db: db, cat: cat, players: players, logger: logger}
}

// Travel moves the player to the destination given as a numeric argument.
func (svc *Service) Travel(ctx context.Context, handle, destinationArg string) (string, error) {
	p, err := svc.players.ByHandle(ctx, handle)
	if err != nil {
		return "", err
	}

	maxLoc := svc.cat.MaxLocationID()
	dest, err := strconv.Atoi(strings.TrimSpace(destinationArg))
	if err != nil || dest < 1 || dest > maxLoc {
		return "", gameerr.Reject(gameerr.ErrInvalidInput,
			"Invalid location. Enter a number between 1 and %d.", maxLoc)
	}
	loc := svc.cat.LocationByID(dest)
	if loc == nil {
		return "", gameerr.Reject(gameerr.ErrLocationNotFound, "Location %d does not exist.", dest)
	}

	var msg string
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := player.StatsForUpdate(tx, p.ID)
		if err != nil {
			return err
		}

		// Anywhere at or below the watermark is free to revisit.
		if dest <= stats.HighestLocation {
			upd := player.StatsUpdate{CurrentLocation: player.Int(dest)}
			if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
				return err
			}
			msg = fmt.Sprintf("You have traveled to %s!", loc.Name)
			return nil
		}

		if dest > stats.HighestLocation+1 {
			return gameerr.Reject(gameerr.ErrPrerequisiteNotMet,
				"You must unlock locations in order. Your journey has reached location %d.",
				stats.HighestLocation)
		}

		// Frontier: one step past the watermark, gated on the watermark
		// location's collection set and the destination's XP threshold.
		// The current location may be anywhere below the watermark, so it
		// cannot stand in for the frontier's prerequisite.
		missing, err := inventory.MissingLocationItemsTx(tx, svc.cat, p.ID, stats.HighestLocation)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return gameerr.Reject(gameerr.ErrPrerequisiteNotMet,
				"You still need to collect: %s.", strings.Join(missing, ", "))
		}
		if stats.XP < loc.XPThreshold {
			return gameerr.Reject(gameerr.ErrPrerequisiteNotMet,
				"You need %d XP to reach %s but only have %d.", loc.XPThreshold, loc.Name, stats.XP)
		}

		upd := player.StatsUpdate{
			CurrentLocation: player.Int(dest),
			HighestLocation: player.Int(dest),
		}
		if err := player.ApplyStatsTx(tx, stats, upd); err != nil {
			return err
		}
		msg = fmt.Sprintf("You have unlocked %s!", loc.Name)
		if loc.NarrativeText != "" {
			msg = msg + " " + loc.NarrativeText
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}
