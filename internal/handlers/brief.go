package handlers

import (
	"civicpulse/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BriefHandler struct {
	briefs *services.BriefService
	queue  *services.BriefQueue
}

func NewBriefHandler(briefs *services.BriefService, queue *services.BriefQueue) *BriefHandler {
	return &BriefHandler{briefs: briefs, queue: queue}
}

// Latest 已保存的简报
func (h *BriefHandler) Latest(c *gin.Context) {
	brief, err := h.briefs.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brief)
}

// Generate 重新生成简报。?async=1 时只加入队列，返回 202。
func (h *BriefHandler) Generate(c *gin.Context) {
	id := c.Param("id")
	if !h.briefs.Enabled() {
		RespondError(c, services.ErrAIDisabled)
		return
	}

	if c.Query("async") != "" && h.queue != nil {
		c.JSON(http.StatusAccepted, gin.H{"queued": h.queue.Schedule(id)})
		return
	}

	brief, err := h.briefs.Generate(c.Request.Context(), id, viewerID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brief)
}
