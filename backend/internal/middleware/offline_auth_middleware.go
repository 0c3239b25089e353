package middleware

import (
	"cs-news-portal/backend/internal/domain/access"

	"github.com/gin-gonic/gin"
)

// OfflineAuthMiddleware 在本地模式下注入固定身份，绕过 JWT 校验流程。
type OfflineAuthMiddleware struct {
	principal access.Principal
}

// NewOfflineAuthMiddleware 构造用于离线模式的鉴权中间件。
func NewOfflineAuthMiddleware(principal access.Principal) *OfflineAuthMiddleware {
	if principal.Subject == "" {
		principal.Subject = "local-editor"
	}
	return &OfflineAuthMiddleware{principal: principal}
}

// Handle 将固定身份写入上下文，使后续中间件与 Handler 可以读取。
func (m *OfflineAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, m.principal)
		c.Next()
	}
}
