package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cs-news-portal/backend/internal/app"
	"cs-news-portal/backend/internal/bootstrapdata"
	"cs-news-portal/backend/internal/config"
	domain "cs-news-portal/backend/internal/domain/news"
	"cs-news-portal/backend/internal/infra/logger"
	"cs-news-portal/backend/internal/repository"
	newssvc "cs-news-portal/backend/internal/service/news"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	dataDir = flag.String("data-dir", "", "指定示例数据目录，默认读取 LOCAL_BOOTSTRAP_DATA_DIR")
	reset   = flag.Bool("reset", false, "导入前清空 news 表")
)

// main 是示例数据导入工具入口，按 APP_MODE 连接对应数据库并通过新闻服务写入示例新闻。
func main() {
	flag.Parse()
	config.LoadEnvFiles()

	if *dataDir != "" {
		if err := os.Setenv("LOCAL_BOOTSTRAP_DATA_DIR", strings.TrimSpace(*dataDir)); err != nil {
			panic(fmt.Sprintf("set LOCAL_BOOTSTRAP_DATA_DIR failed: %v", err))
		}
	}

	zapLogger, err := logger.Init()
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar().With("component", "seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := config.LoadRuntimeFlags()
	resources, err := app.InitResources(ctx, sugar, flags)
	if err != nil {
		sugar.Fatalw("initialise resources failed", "error", err)
	}
	defer func() {
		if closeErr := resources.Close(); closeErr != nil {
			sugar.Warnw("close resources failed", "error", closeErr)
		}
	}()

	if *reset {
		if err := clearNews(ctx, resources.DB); err != nil {
			sugar.Fatalw("clear news failed", "error", err)
		}
		sugar.Infow("news table cleared")
	}

	service := newssvc.NewService(repository.NewNewsRepository(resources.DB), sugar)
	report, err := bootstrapdata.SeedNews(ctx, service, bootstrapdata.Options{Logger: sugar})
	if err != nil {
		sugar.Fatalw("seed news failed", "error", err)
	}

	if err := reportSeedSummary(ctx, resources.DB, sugar); err != nil {
		sugar.Warnw("report seed summary failed", "error", err)
	}
	sugar.Infow("seed finished",
		"mode", flags.Mode,
		"data_dir", bootstrapdata.ResolveDataDir(),
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"rejected", report.Rejected,
	)
}

func clearNews(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.News{}).Error
}

// reportSeedSummary 统计新闻总数与已发布数量，便于确认导入结果。
func reportSeedSummary(ctx context.Context, db *gorm.DB, sugar *zap.SugaredLogger) error {
	var total, published int64
	if err := db.WithContext(ctx).Model(&domain.News{}).Count(&total).Error; err != nil {
		return fmt.Errorf("count news: %w", err)
	}
	if err := db.WithContext(ctx).Model(&domain.News{}).Where("is_published = ?", true).Count(&published).Error; err != nil {
		return fmt.Errorf("count published news: %w", err)
	}
	sugar.Infow("seed summary", "news", total, "published", published)
	return nil
}
