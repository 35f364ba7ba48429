package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ViewerKey gin.Context 中保存当前用户 ID 的 key
const ViewerKey = "viewer_id"

// SessionUserKey 外部登录服务写入 session 的字段
const SessionUserKey = "user_id"

// LoadViewer 从 session 读取用户 ID 放入 context，未登录时不做任何事
func LoadViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		switch v := session.Get(SessionUserKey).(type) {
		case nil:
		case string:
			if v != "" {
				c.Set(ViewerKey, v)
			}
		default:
			c.Set(ViewerKey, fmt.Sprint(v))
		}
		c.Next()
	}
}

// AuthRequired 要求已登录，否则返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// ViewerID 当前用户 ID，匿名访问时为空
func ViewerID(c *gin.Context) string {
	return c.GetString(ViewerKey)
}
