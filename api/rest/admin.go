package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminAuth checks the X-Admin-Key header against the configured bcrypt hash.
// An empty hash disables all admin endpoints.
func AdminAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	db     *gorm.DB
	cat    *catalog.Catalog
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, cat *catalog.Catalog, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, cat: cat, sched: sched, logger: logger}
}

// ReloadCatalog handles POST /api/admin/reload. It re-reads the items and
// locations tables so data edits go live without a restart.
func (h *AdminHandler) ReloadCatalog(c *gin.Context) {
	if err := h.cat.Reload(h.db.WithContext(c.Request.Context())); err != nil {
		h.logger.Error("catalog reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	h.logger.Info("catalog reloaded")
	c.JSON(http.StatusOK, gin.H{
		"message":      "catalog reloaded",
		"max_location": h.cat.MaxLocationID(),
	})
}

// ListSchedulerTasks handles GET /api/admin/scheduler.
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tickers": h.sched.ListTickers()})
}
