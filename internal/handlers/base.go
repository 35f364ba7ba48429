package handlers

import (
	"civicpulse/internal/ledger"
	"civicpulse/internal/middleware"
	"civicpulse/internal/services"
	"civicpulse/internal/store"
	"civicpulse/internal/thread"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusClientClosedRequest 调用方已断开，沿用 nginx 的 499
const statusClientClosedRequest = 499

// RespondError 把领域错误映射为 HTTP 状态码
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled):
		status = statusClientClosedRequest
	case errors.Is(err, ledger.ErrInvalidVoteValue),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrInvalidParent):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, thread.ErrPostNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAIDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

func viewerID(c *gin.Context) string {
	return middleware.ViewerID(c)
}
