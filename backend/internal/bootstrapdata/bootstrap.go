package bootstrapdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domain "cs-news-portal/backend/internal/domain/news"
	newssvc "cs-news-portal/backend/internal/service/news"

	"go.uber.org/zap"
)

const (
	envDataDir              = "LOCAL_BOOTSTRAP_DATA_DIR"
	defaultBootstrapDataDir = "backend/data/bootstrap"
	newsSampleFilename      = "news_samples.json"
)

// NewsWriter 是导入示例新闻所需的服务能力。
type NewsWriter interface {
	Create(ctx context.Context, in newssvc.CreateInput) (*newssvc.Article, error)
	GetBySlug(ctx context.Context, slug string) (*newssvc.Article, error)
}

// Options 描述示例数据导入的可选参数。
type Options struct {
	DataDir string
	Logger  *zap.SugaredLogger
}

// Report 汇总一次导入的结果。
type Report struct {
	Inserted int
	Skipped  int
	Rejected int
}

type newsSeed struct {
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Excerpt     string           `json:"excerpt"`
	Category    string           `json:"category"`
	ClubName    string           `json:"clubName"`
	Images      []domain.Image   `json:"images"`
	Author      string           `json:"author"`
	IsPublished bool             `json:"isPublished"`
	EventDate   string           `json:"eventDate"`
	Tags        domain.TagsInput `json:"tags"`
}

// ResolveDataDir 解析示例数据所在目录。
func ResolveDataDir() string {
	raw := strings.TrimSpace(os.Getenv(envDataDir))
	if raw == "" {
		return defaultBootstrapDataDir
	}
	return raw
}

// SeedNews 通过新闻服务导入示例数据，因此与接口写入走同一套校验。
// slug 已存在的条目视为已导入并跳过；未通过校验的条目记录日志后跳过，不中断整体导入。
func SeedNews(ctx context.Context, writer NewsWriter, opts Options) (Report, error) {
	var report Report
	if writer == nil {
		return report, errors.New("news writer is nil")
	}
	if opts.DataDir == "" {
		opts.DataDir = ResolveDataDir()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	path := filepath.Join(opts.DataDir, newsSampleFilename)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Infow("news seed not found, skip", "path", path)
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("read news seed: %w", err)
	}

	var seeds []newsSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return report, fmt.Errorf("parse news seed: %w", err)
	}

	for idx, item := range seeds {
		slug := domain.DeriveSlug(strings.TrimSpace(item.Title), time.Now())
		if _, err := writer.GetBySlug(ctx, slug); err == nil {
			report.Skipped++
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return report, fmt.Errorf("lookup seed %d: %w", idx, err)
		}

		article, err := writer.Create(ctx, newssvc.CreateInput{
			Title:       item.Title,
			Content:     item.Content,
			Excerpt:     item.Excerpt,
			Category:    item.Category,
			ClubName:    item.ClubName,
			Images:      item.Images,
			Author:      item.Author,
			IsPublished: item.IsPublished,
			EventDate:   item.EventDate,
			Tags:        item.Tags,
		})
		var verr *domain.ValidationError
		switch {
		case err == nil:
			report.Inserted++
			logger.Infow("news seed inserted", "slug", article.Slug, "published", article.IsPublished)
		case errors.As(err, &verr):
			report.Rejected++
			logger.Warnw("news seed rejected", "index", idx, "title", item.Title, "errors", verr.Fields)
		case errors.Is(err, domain.ErrDuplicateSlug):
			report.Skipped++
		default:
			return report, fmt.Errorf("insert seed %d: %w", idx, err)
		}
	}

	logger.Infow("news seed finished", "inserted", report.Inserted, "skipped", report.Skipped, "rejected", report.Rejected)
	return report, nil
}
