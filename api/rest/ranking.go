package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingHandler serves the XP leaderboard.
type RankingHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{db: db, cache: c, logger: logger}
}

const rankingZKey = "ranking:xp"
const rankingTop = 100

// RankEntry is one row in the leaderboard.
type RankEntry struct {
	Rank   int    `json:"rank"`
	Handle string `json:"handle"`
	XP     int    `json:"xp"`
}

// TopXP returns the top players sorted by XP.
// GET /api/ranking/xp?limit=20
func (h *RankingHandler) TopXP(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= rankingTop {
		limit = l
	}

	// Try cached ranking from the sorted set first.
	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, rankingZKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]RankEntry, 0, len(members))
		for i, m := range members {
			score, _ := h.cache.ZScore(ctx, rankingZKey, m)
			entries = append(entries, RankEntry{
				Rank:   i + 1,
				Handle: m,
				XP:     int(score),
			})
		}
		c.JSON(http.StatusOK, gin.H{"ranking": entries})
		return
	}

	// Fall back to the DB and warm the cache on the way out.
	entries, err := h.topFromDB(ctx, limit, true)
	if err != nil {
		h.logger.Error("ranking query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

// Refresh handles POST /api/admin/ranking/refresh.
func (h *RankingHandler) Refresh(c *gin.Context) {
	n, err := h.Rebuild(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}

// Rebuild repopulates the ranking sorted set from the DB. The scheduler calls
// this periodically so the board tracks XP earned through chat commands.
func (h *RankingHandler) Rebuild(ctx context.Context) (int, error) {
	// Drop the old board first so handles that fell out of the top do not
	// linger with stale scores.
	if err := h.cache.Del(ctx, rankingZKey); err != nil {
		return 0, err
	}
	entries, err := h.topFromDB(ctx, rankingTop, true)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (h *RankingHandler) topFromDB(ctx context.Context, limit int, warmCache bool) ([]RankEntry, error) {
	type row struct {
		Handle string
		XP     int
	}
	var rows []row
	err := h.db.WithContext(ctx).Model(&model.PlayerStats{}).
		Select("players.handle AS handle, player_stats.xp AS xp").
		Joins("JOIN players ON players.id = player_stats.player_id").
		Order("player_stats.xp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]RankEntry, len(rows))
	for i, r := range rows {
		entries[i] = RankEntry{Rank: i + 1, Handle: r.Handle, XP: r.XP}
		if warmCache {
			_ = h.cache.ZAdd(ctx, rankingZKey, float64(r.XP), r.Handle)
		}
	}
	return entries, nil
}
