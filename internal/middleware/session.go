package middleware

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/hkdf"
)

const SessionName = "civicpulse_session"

// NewSessionStore 从 SESSION_SECRET 派生签名和加密两把 key。
// 写 session 的登录服务必须使用同样的派生方式。
func NewSessionStore(secret string) (cookie.Store, error) {
	if secret == "" {
		return nil, fmt.Errorf("middleware: empty session secret")
	}
	authKey, err := deriveKey(secret, "civicpulse session auth", 64)
	if err != nil {
		return nil, err
	}
	encKey, err := deriveKey(secret, "civicpulse session encryption", 32)
	if err != nil {
		return nil, err
	}

	store := cookie.NewStore(authKey, encKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Sessions 挂载 cookie session
func Sessions(store cookie.Store) gin.HandlerFunc {
	return sessions.Sessions(SessionName, store)
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("middleware: derive session key: %w", err)
	}
	return key, nil
}
