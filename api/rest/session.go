package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/gameerr"
	mw "github.com/kotu-game/server/middleware"
	"go.uber.org/zap"
)

// SessionHandler issues and revokes companion-panel session tokens.
type SessionHandler struct {
	players *player.Service
	cache   cache.Cache
	sec     config.SecurityConfig
	logger  *zap.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(players *player.Service, c cache.Cache, sec config.SecurityConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{players: players, cache: c, sec: sec, logger: logger}
}

type createSessionRequest struct {
	Handle string `json:"handle" binding:"required,min=1,max=64"`
}

// Create handles POST /api/session. The handle must already be registered
// through the chat side.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	p, err := h.players.ByHandle(ctx, req.Handle)
	if err != nil {
		if errors.Is(err, gameerr.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		} else {
			h.logger.Error("session lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	token, err := mw.GenerateToken(p.ID, p.Handle, h.sec.JWTSecret, h.sec.SessionTTL)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := h.cache.Set(ctx, "session:"+token, strconv.FormatInt(p.ID, 10), h.sec.SessionTTL); err != nil {
		h.logger.Error("session store failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"handle":     p.Handle,
		"expires_in": int64(h.sec.SessionTTL.Seconds()),
	})
}

// Delete handles DELETE /api/session for the authenticated session.
func (h *SessionHandler) Delete(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if err := h.cache.Del(c.Request.Context(), "session:"+tokenStr); err != nil {
		h.logger.Warn("session delete failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
