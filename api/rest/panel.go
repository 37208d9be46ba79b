package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	"github.com/kotu-game/server/model"
	mw "github.com/kotu-game/server/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PanelHandler serves the companion-panel read endpoints: a player's profile,
// stats, and inventory ledger.
type PanelHandler struct {
	db      *gorm.DB
	players *player.Service
	inv     *inventory.Service
	logger  *zap.Logger
}

// NewPanelHandler creates a PanelHandler.
func NewPanelHandler(db *gorm.DB, players *player.Service, inv *inventory.Service, logger *zap.Logger) *PanelHandler {
	return &PanelHandler{db: db, players: players, inv: inv, logger: logger}
}

// playerView is the panel's combined profile + stats payload.
type playerView struct {
	Player *model.Player      `json:"player"`
	Stats  *model.PlayerStats `json:"stats"`
}

// GetPlayer handles GET /api/player/:handle.
func (h *PanelHandler) GetPlayer(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetStats handles GET /api/player/:handle/stats.
func (h *PanelHandler) GetStats(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": view.Player.Handle, "stats": view.Stats})
}

// GetInventory handles GET /api/player/:handle/inventory.
func (h *PanelHandler) GetInventory(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}
	entries, err := h.inv.List(c.Request.Context(), view.Player.ID)
	if err != nil {
		h.logger.Error("inventory list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handle": view.Player.Handle, "inventory": entries})
}

// Me handles GET /api/me for the authenticated session.
func (h *PanelHandler) Me(c *gin.Context) {
	handle := mw.GetHandle(c)
	view, ok := h.lookupHandle(c, handle)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// MyInventory handles GET /api/me/inventory for the authenticated session.
func (h *PanelHandler) MyInventory(c *gin.Context) {
	c.Params = append(c.Params, gin.Param{Key: "handle", Value: mw.GetHandle(c)})
	h.GetInventory(c)
}

func (h *PanelHandler) lookup(c *gin.Context) (*playerView, bool) {
	return h.lookupHandle(c, c.Param("handle"))
}

func (h *PanelHandler) lookupHandle(c *gin.Context, handle string) (*playerView, bool) {
	ctx := c.Request.Context()
	p, err := h.players.ByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gameerr.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		} else {
			h.logger.Error("player lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return nil, false
	}
	stats, err := h.players.Stats(ctx, p.ID)
	if err != nil {
		h.logger.Error("stats lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return &playerView{Player: p, Stats: stats}, true
}
