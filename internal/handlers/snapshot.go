package handlers

import (
	"civicpulse/internal/snapshot"
	"civicpulse/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SnapshotHandler struct {
	composer    *snapshot.Composer
	cache       *utils.Cache[*snapshot.Snapshot]
	ttl         time.Duration
	horizonDays int
}

func NewSnapshotHandler(composer *snapshot.Composer, cache *utils.Cache[*snapshot.Snapshot], ttl time.Duration, horizonDays int) *SnapshotHandler {
	return &SnapshotHandler{composer: composer, cache: cache, ttl: ttl, horizonDays: horizonDays}
}

// Health 存活检查，附带启动以来被吸收的外部读取失败次数
func (h *SnapshotHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"absorbed_fetch_errors": h.composer.Failures(),
	})
}

func snapshotKeyPrefix(constituencyID string) string {
	return "snapshot:" + constituencyID + ":"
}

// Snapshot 五层快照，同一公民日内缓存 ttl
func (h *SnapshotHandler) Snapshot(c *gin.Context) {
	id := c.Param("id")
	key := snapshotKeyPrefix(id) + h.composer.Clock().Today().String()

	if snap, ok := h.cache.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, snap)
		return
	}

	snap, err := h.composer.Compose(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	// 降级的快照不缓存，下次请求重新读取
	if len(snap.Meta.Degraded) == 0 && h.ttl > 0 {
		h.cache.Set(key, snap, h.ttl)
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, snap)
}

// Accountability 代表问责指标
func (h *SnapshotHandler) Accountability(c *gin.Context) {
	report, err := h.composer.Accountability(c.Request.Context(), c.Query("rep_user_id"), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Terms 任期即将结束的代表，days 默认取配置
func (h *SnapshotHandler) Terms(c *gin.Context) {
	days := utils.IntOr(c.Query("days"), h.horizonDays)
	if days < 0 {
		badRequest(c, "days must not be negative")
		return
	}
	terms, err := h.composer.TermsEnding(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"horizon_days": days, "terms": terms})
}
