/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 13:30:15
 * @FilePath: \cs-news-portal\backend\internal\middleware\auth_middleware.go
 * @LastEditTime: 2026-10-15 13:30:20
 */
package middleware

import (
	"context"
	"net/http"
	"strings"

	"cs-news-portal/backend/internal/domain/access"
	response "cs-news-portal/backend/internal/infra/common"

	"github.com/gin-gonic/gin"
)

// principalKey 是身份在 gin 上下文中的键。
const principalKey = "principal"

// Authorizer 校验调用方凭证，失败时返回 access.ErrUnauthorized。
type Authorizer interface {
	Authorize(ctx context.Context, credential string) (access.Principal, error)
}

// AuthMiddleware 保护写接口：凭证无效时直接终止请求，后续 handler 不会执行。
type AuthMiddleware struct {
	authorizer Authorizer
}

// NewAuthMiddleware 创建鉴权中间件实例。
func NewAuthMiddleware(authorizer Authorizer) *AuthMiddleware {
	return &AuthMiddleware{authorizer: authorizer}
}

// Handle 返回 Gin 中间件，校验 Bearer Token 并在上下文中注入身份。
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AbortWithFail(c, http.StatusUnauthorized, response.ErrUnauthorized, "No token, authorization denied", nil)
			return
		}
		if m.authorizer == nil {
			response.AbortWithFail(c, http.StatusUnauthorized, response.ErrUnauthorized, "Token is not valid", nil)
			return
		}

		principal, err := m.authorizer.Authorize(c.Request.Context(), credential)
		if err != nil {
			response.AbortWithFail(c, http.StatusUnauthorized, response.ErrUnauthorized, "Token is not valid", nil)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom 读取已通过鉴权的身份。
func PrincipalFrom(c *gin.Context) (access.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return access.Principal{}, false
	}
	principal, ok := value.(access.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
