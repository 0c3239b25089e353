package middleware

import (
	"math"
	"net/http"
	"strconv"

	response "cs-news-portal/backend/internal/infra/common"
	"cs-news-portal/backend/internal/infra/metrics"
	"cs-news-portal/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware 按调用者身份限制写接口频率，必须挂在鉴权中间件之后。
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	policy  ratelimit.Policy
	logger  *zap.SugaredLogger
}

// NewRateLimitMiddleware 构造限流中间件，limiter 为 nil 或 Limit<=0 时放行所有请求。
func NewRateLimitMiddleware(limiter ratelimit.Limiter, policy ratelimit.Policy, logger *zap.SugaredLogger) *RateLimitMiddleware {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RateLimitMiddleware{limiter: limiter, policy: policy, logger: logger}
}

// Handle 返回 Gin 中间件。
func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil || m.policy.Limit <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if principal, ok := PrincipalFrom(c); ok && principal.Subject != "" {
			key = "principal:" + principal.Subject
		}

		decision, err := m.limiter.Allow(c.Request.Context(), "news-mutation:"+key, m.policy)
		if err != nil {
			// 限流存储故障时放行，避免影响编辑发布。
			m.logger.Warnw("rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}
		if decision.Remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			metrics.RecordRateLimited(c.FullPath())
			response.AbortWithFail(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests, please retry later", gin.H{"retry_after_seconds": seconds})
			return
		}
		c.Next()
	}
}
