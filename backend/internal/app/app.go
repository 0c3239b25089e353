/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 15:24:47
 * @FilePath: \cs-news-portal\backend\internal\app\app.go
 * @LastEditTime: 2026-10-15 15:24:51
 */
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cs-news-portal/backend/internal/config"
	"cs-news-portal/backend/internal/domain/news"
	"cs-news-portal/backend/internal/infra/client"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resources 持有进程级的外部资源：数据库与可选的 Redis。
type Resources struct {
	Flags  config.RuntimeFlags
	DB     *gorm.DB
	SQL    *sql.DB
	Redis  *redis.Client
	logger *zap.SugaredLogger
}

// InitResources 根据运行模式打开数据库（local→SQLite，online→MySQL），尝试连接 Redis 并完成表结构迁移。
// Redis 不可用时只记录警告，限流回退到内存实现。
func InitResources(ctx context.Context, logger *zap.SugaredLogger, flags config.RuntimeFlags) (*Resources, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	res := &Resources{Flags: flags, logger: logger}

	var err error
	if flags.IsLocal() {
		res.DB, res.SQL, err = client.NewGORMSQLite(flags.Local.DBPath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		logger.Infow("sqlite ready", "path", flags.Local.DBPath)
	} else {
		mysqlCfg, cfgErr := client.LoadMySQLConfig()
		if cfgErr != nil {
			return nil, fmt.Errorf("load mysql config: %w", cfgErr)
		}
		res.DB, res.SQL, err = client.NewGORMMySQL(ctx, mysqlCfg)
		if err != nil {
			return nil, fmt.Errorf("init mysql: %w", err)
		}
		logger.Infow("mysql connected", "host", mysqlCfg.Host, "database", mysqlCfg.Database)
	}

	if err := Migrate(ctx, res.DB); err != nil {
		_ = res.Close()
		return nil, err
	}

	redisOpts, err := client.LoadRedisOptions()
	switch {
	case errors.Is(err, client.ErrRedisNotConfigured):
		logger.Infow("redis not configured; using in-memory rate limiter")
	case err != nil:
		logger.Warnw("invalid redis config; using in-memory rate limiter", "error", err)
	default:
		redisClient, dialErr := client.NewRedisClient(ctx, redisOpts)
		if dialErr != nil {
			logger.Warnw("redis unavailable; using in-memory rate limiter", "error", dialErr, "addr", redisOpts.Addr())
		} else {
			res.Redis = redisClient
			logger.Infow("redis connected", "addr", redisOpts.Addr(), "db", redisOpts.DB)
		}
	}

	return res, nil
}

// Migrate 同步 news 表结构与索引。
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&news.News{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close 释放数据库与 Redis 连接。
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.SQL != nil {
		if err := r.SQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
