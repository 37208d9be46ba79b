package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/game/command"
	mw "github.com/kotu-game/server/middleware"
	"go.uber.org/zap"
)

// CommandHandler receives chat-bot webhooks and feeds them to the dispatcher.
type CommandHandler struct {
	dispatcher *command.Dispatcher
	logger     *zap.Logger
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(d *command.Dispatcher, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{dispatcher: d, logger: logger}
}

type commandRequest struct {
	Handle   string `json:"handle"   binding:"required,min=1,max=64"`
	Action   string `json:"action"   binding:"required,min=1,max=32"`
	Argument string `json:"argument"`
}

// Execute handles POST /api/command. The response message is what the bot
// says back in chat; rule rejections are a 200 with the rejection line.
func (h *CommandHandler) Execute(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.dispatcher.Dispatch(c.Request.Context(), mw.GetTraceID(c), req.Handle, req.Action, req.Argument)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// RecentEvents handles GET /api/events, newest first.
func (h *CommandHandler) RecentEvents(c *gin.Context) {
	events, err := h.dispatcher.RecentEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("event feed read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
