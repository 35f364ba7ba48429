package router

import (
	"civicpulse/internal/handlers"
	"civicpulse/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 路由用到的全部 handler
type Handlers struct {
	Snapshot *handlers.SnapshotHandler
	Comment  *handlers.CommentHandler
	Vote     *handlers.VoteHandler
	Brief    *handlers.BriefHandler
}

// RegisterRoutes 注册路由。调用前需已挂载 session 和 LoadViewer 中间件。
func RegisterRoutes(r *gin.Engine, h Handlers) {
	// 公共路由
	r.GET("/healthz", h.Snapshot.Health) // 存活检查

	constituencies := r.Group("/constituencies/:id")
	{
		constituencies.GET("/snapshot", h.Snapshot.Snapshot)             // 五层快照
		constituencies.GET("/accountability", h.Snapshot.Accountability) // 代表问责
		constituencies.GET("/terms", h.Snapshot.Terms)                   // 任期即将结束
		constituencies.GET("/brief", h.Brief.Latest)                     // 最新 AI 简报
	}
	r.GET("/policy/:id/comments", h.Comment.List) // 评论树

	// 受保护路由
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/constituencies/:id/brief", h.Brief.Generate) // 重新生成简报
		authorized.POST("/policy/:id/comments", h.Comment.Create)      // 发表评论
		authorized.POST("/policy/:id/vote", h.Vote.VotePolicy)         // 政策帖投票
		authorized.POST("/comments/:id/vote", h.Vote.VoteComment)      // 评论投票
		authorized.POST("/issues/:id/vote", h.Vote.VoteIssue)          // 问题投票
	}
}

// New 创建带通用中间件的 gin.Engine
func New(session gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(session, middleware.LoadViewer())
	return r
}
