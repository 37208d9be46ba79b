package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/gameerr"
	"github.com/kotu-game/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns player identity and the stats row.
type Service struct {
	db     *gorm.DB
	game   config.GameConfig
	logger *zap.Logger
}

// NewService creates a player Service.
func NewService(db *gorm.DB, game config.GameConfig, logger *zap.Logger) *Service {
	return &Service{db: db, game: game, logger: logger}
}

// Register creates the player row, its stats defaults, and the starting XP in
// one transaction. Registering twice returns the welcome-back line instead.
func (svc *Service) Register(ctx context.Context, handle, externalID string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", fmt.Errorf("%w: empty handle", gameerr.ErrInvalidInput)
	}

	existing, err := svc.ByHandle(ctx, handle)
	if err == nil {
		// Backfill the external ID if registration previously ran without one.
		if existing.ExternalID == "" && externalID != "" {
			if err := svc.db.WithContext(ctx).Model(existing).
				Update("external_id", externalID).Error; err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("@%s, you are already on your journey. Use the channel rewards to play.", handle), nil
	}
	if !errors.Is(err, gameerr.ErrPlayerNotFound) {
		return "", err
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := &model.Player{Handle: handle, ExternalID: externalID}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		stats := &model.PlayerStats{
			PlayerID:        p.ID,
			Health:          svc.game.StartHealth,
			HealthCap:       svc.game.StartHealth,
			WeaponLevel:     1,
			CurrentLocation: 1,
			HighestLocation: 1,
			XP:              svc.game.StartXP,
		}
		return tx.Create(stats).Error
	})
	if err != nil {
		return "", err
	}

	svc.logger.Info("player registered", zap.String("handle", handle))
	return fmt.Sprintf("@%s, welcome traveler! Use the channel rewards to play the game.", handle), nil
}

// ByHandle looks up a player by handle, case-insensitively.
func (svc *Service) ByHandle(ctx context.Context, handle string) (*model.Player, error) {
	var p model.Player
	err := svc.db.WithContext(ctx).
		Where("LOWER(handle) = ?", strings.ToLower(strings.TrimSpace(handle))).
		First(&p).Error
	if err != nil {
		if isNotFound(err) {
			return nil, gameerr.Reject(gameerr.ErrPlayerNotFound,
				"Player not found. Use !play to register.")
		}
		return nil, err
	}
	return &p, nil
}

// Stats returns the player's stats row.
func (svc *Service) Stats(ctx context.Context, playerID int64) (*model.PlayerStats, error) {
	return statsRow(svc.db.WithContext(ctx), playerID)
}

// StatsForUpdate reads the stats row with a row lock inside tx. All compound
// gameplay sequences go through this so concurrent commands for one player
// serialize at the store.
func StatsForUpdate(tx *gorm.DB, playerID int64) (*model.PlayerStats, error) {
	return statsRow(tx.Clauses(clause.Locking{Strength: "UPDATE"}), playerID)
}

func statsRow(db *gorm.DB, playerID int64) (*model.PlayerStats, error) {
	var s model.PlayerStats
	if err := db.Where("player_id = ?", playerID).First(&s).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: stats for player %d", gameerr.ErrPlayerNotFound, playerID)
		}
		return nil, err
	}
	return &s, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
