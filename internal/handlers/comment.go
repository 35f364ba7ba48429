package handlers

import (
	"civicpulse/internal/services"
	"civicpulse/internal/thread"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	threads  *thread.Service
	comments *services.CommentService
}

func NewCommentHandler(threads *thread.Service, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{threads: threads, comments: comments}
}

type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parent_comment_id"`
}

// List 政策帖的评论树，带当前用户的投票
func (h *CommentHandler) List(c *gin.Context) {
	forest, err := h.threads.Threaded(c.Request.Context(), c.Param("id"), viewerID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": forest})
}

// Create 发表评论，可选回复某条评论
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	added, err := h.comments.AddComment(c.Request.Context(), c.Param("id"), viewerID(c), req.Content, req.ParentCommentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}
