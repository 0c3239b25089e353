package middleware

import "github.com/gin-gonic/gin"

// Authenticator 抽象写接口的鉴权中间件：在线模式为 AuthMiddleware，本地模式为 OfflineAuthMiddleware。
type Authenticator interface {
	Handle() gin.HandlerFunc
}
