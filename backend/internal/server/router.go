package server

import (
	"net/http"
	"time"

	"cs-news-portal/backend/internal/handler"
	response "cs-news-portal/backend/internal/infra/common"
	"cs-news-portal/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// defaultCORSOrigin 在未配置来源白名单时使用，对应前端开发服务器。
const defaultCORSOrigin = "http://localhost:3000"

type RouterOptions struct {
	NewsHandler   *handler.NewsHandler
	StatusHandler *handler.StatusHandler
	AuthMW        middleware.Authenticator
	RateLimitMW   *middleware.RateLimitMiddleware
	CORSOrigins   []string
	Logger        *zap.SugaredLogger
	// DisableMetrics 关闭 /metrics 路由，测试中避免依赖全局注册表。
	DisableMetrics bool
}

// NewRouter 构建应用的 Gin Engine，汇总新闻接口、状态探针与公共中间件。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if opts.Logger != nil {
			opts.Logger.Errorw("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		}
		response.AbortWithFail(c, http.StatusInternalServerError, response.ErrInternal, "Something went wrong!", nil)
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.AccessLog(opts.Logger))

	status := opts.StatusHandler
	if status == nil {
		status = handler.NewStatusHandler()
	}
	r.GET("/", status.Root)
	r.NoRoute(status.NotFound)

	if !opts.DisableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/status", status.Status)

		if opts.NewsHandler != nil {
			news := api.Group("/news")
			news.GET("/test", opts.NewsHandler.Ping)
			news.GET("", opts.NewsHandler.List)
			news.GET("/:slug", opts.NewsHandler.Get)
			news.GET("/category/:category", opts.NewsHandler.ListByCategory)
			news.GET("/club/:clubName", opts.NewsHandler.ListByClub)

			// 写接口必须先通过鉴权；未配置鉴权时不注册，避免写接口裸露。
			if opts.AuthMW != nil {
				editor := api.Group("/news")
				editor.Use(opts.AuthMW.Handle())
				if opts.RateLimitMW != nil {
					editor.Use(opts.RateLimitMW.Handle())
				}
				editor.POST("", opts.NewsHandler.Create)
				editor.PUT("/:id", opts.NewsHandler.Update)
				editor.DELETE("/:id", opts.NewsHandler.Delete)
			}
		}
	}

	return r
}
