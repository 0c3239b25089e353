/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 15:40:28
 * @FilePath: \cs-news-portal\backend\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2026-10-15 15:40:34
 */
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"cs-news-portal/backend/internal/app"
	"cs-news-portal/backend/internal/config"
	"cs-news-portal/backend/internal/domain/access"
	"cs-news-portal/backend/internal/handler"
	"cs-news-portal/backend/internal/infra/ratelimit"
	"cs-news-portal/backend/internal/infra/token"
	"cs-news-portal/backend/internal/middleware"
	"cs-news-portal/backend/internal/repository"
	"cs-news-portal/backend/internal/server"
	newssvc "cs-news-portal/backend/internal/service/news"

	"go.uber.org/zap"
)

// Application 汇总 HTTP 服务所需的全部组件。
type Application struct {
	Resources *app.Resources
	NewsSvc   *newssvc.Service
	Router    http.Handler
}

// BuildApplication 组装仓储、服务、鉴权与路由。
// 在线模式必须配置 JWT_SECRET；本地模式使用固定编辑身份。
func BuildApplication(_ context.Context, logger *zap.SugaredLogger, resources *app.Resources, flags config.RuntimeFlags) (*Application, error) {
	if resources == nil || resources.DB == nil {
		return nil, fmt.Errorf("database not initialised")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	newsRepo := repository.NewNewsRepository(resources.DB)
	newsService := newssvc.NewServiceWithConfig(newsRepo, logger.With("component", "news.service"), newssvc.Config{
		DefaultPageSize: flags.News.DefaultPageSize,
		MaxPageSize:     flags.News.MaxPageSize,
	})

	authMW, err := buildAuthenticator(logger, flags)
	if err != nil {
		return nil, err
	}

	var limiter ratelimit.Limiter
	if resources.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(resources.Redis, "")
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}
	rateLimitMW := middleware.NewRateLimitMiddleware(limiter, ratelimit.Policy{
		Limit:  flags.News.MutationLimit,
		Window: flags.News.MutationWindow,
	}, logger.With("component", "ratelimit"))

	router := server.NewRouter(server.RouterOptions{
		NewsHandler:   handler.NewNewsHandler(newsService),
		StatusHandler: handler.NewStatusHandler(),
		AuthMW:        authMW,
		RateLimitMW:   rateLimitMW,
		CORSOrigins:   flags.Server.CORSOrigins,
		Logger:        logger.With("component", "http"),
	})

	return &Application{
		Resources: resources,
		NewsSvc:   newsService,
		Router:    router,
	}, nil
}

func buildAuthenticator(logger *zap.SugaredLogger, flags config.RuntimeFlags) (middleware.Authenticator, error) {
	if flags.IsLocal() {
		logger.Warnw("local mode: news mutations use a fixed editor identity", "editor", flags.Local.Editor)
		return middleware.NewOfflineAuthMiddleware(access.Principal{
			Subject:  flags.Local.Editor,
			Username: flags.Local.Editor,
			Role:     "editor",
		}), nil
	}
	if flags.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in %s mode", config.ModeOnline)
	}
	return middleware.NewAuthMiddleware(token.NewJWTVerifier(flags.Auth.JWTSecret)), nil
}
