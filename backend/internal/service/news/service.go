/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 11:05:19
 * @FilePath: \cs-news-portal\backend\internal\service\news\service.go
 * @LastEditTime: 2026-10-15 11:05:19
 */
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "cs-news-portal/backend/internal/domain/news"
	"cs-news-portal/backend/internal/infra/metrics"
	"cs-news-portal/backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListPageSize 定义列表默认每页条目数。
const DefaultListPageSize = 10

// DefaultListMaxPageSize 定义列表允许的最大单页条目数。
const DefaultListMaxPageSize = 100

// Config 描述新闻服务的可配置参数。
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// Clock 用于派生 slug 回退值与发布时间，测试中可注入固定时钟。
	Clock func() time.Time
}

// Service 封装新闻的创建、更新、删除与公开查询逻辑。
type Service struct {
	repo            *repository.NewsRepository
	logger          *zap.SugaredLogger
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// NewService 使用默认配置创建新闻服务。
func NewService(repo *repository.NewsRepository, logger *zap.SugaredLogger) *Service {
	return NewServiceWithConfig(repo, logger, Config{})
}

// NewServiceWithConfig 创建新闻服务，允许自定义分页与时钟。
func NewServiceWithConfig(repo *repository.NewsRepository, logger *zap.SugaredLogger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultListPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultListMaxPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		repo:            repo,
		logger:          logger,
		now:             cfg.Clock,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
	}
}

// Article 是返回给调用方的完整新闻视图。
type Article struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Content     string         `json:"content"`
	Excerpt     string         `json:"excerpt"`
	Category    string         `json:"category"`
	ClubName    string         `json:"clubName,omitempty"`
	Images      []domain.Image `json:"images"`
	Author      string         `json:"author"`
	IsPublished bool           `json:"isPublished"`
	PublishedAt *time.Time     `json:"publishedAt"`
	EventDate   *time.Time     `json:"eventDate"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CreateInput 描述创建新闻时允许填写的字段。
type CreateInput struct {
	Title       string
	Content     string
	Excerpt     string
	Category    string
	ClubName    string
	Images      []domain.Image
	Author      string
	IsPublished bool
	EventDate   string // yyyy-MM-dd 或 RFC3339
	Tags        domain.TagsInput
}

// UpdateInput 描述部分更新，nil 表示该字段未提交。
type UpdateInput struct {
	Title       *string
	Content     *string
	Excerpt     *string
	Category    *string
	ClubName    *string
	Images      *[]domain.Image
	Author      *string
	IsPublished *bool
	EventDate   *string
	Tags        *domain.TagsInput
}

// Create 校验并创建新闻：先完成全部校验与派生，再执行单次写入。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Article, error) {
	now := s.now()

	fields := domain.Fields{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		Excerpt:     strings.TrimSpace(in.Excerpt),
		Section:     domain.NewSection(in.Category, in.ClubName),
		Images:      normaliseImages(in.Images),
		Author:      normaliseAuthor(in.Author),
		IsPublished: in.IsPublished,
		Tags:        in.Tags.Values(),
	}

	verr := domain.NewValidationError()
	eventDate, err := domain.ParseEventDate(in.EventDate)
	if err != nil {
		verr.Add("eventDate", err.Error())
	}
	fields.EventDate = eventDate
	fields.CollectErrors(verr)
	if verr.HasErrors() {
		metrics.RecordNewsMutation("create", "invalid")
		return nil, verr
	}

	entity := &domain.News{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fields.ApplyTo(entity); err != nil {
		metrics.RecordNewsMutation("create", "error")
		return nil, err
	}
	slug := domain.DeriveSlug(fields.Title, now)
	entity.Slug = &slug
	if fields.IsPublished {
		publishedAt := now
		entity.PublishedAt = &publishedAt
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		metrics.RecordNewsMutation("create", mutationResult(err))
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, err
		}
		return nil, fmt.Errorf("persist news: %w", err)
	}

	metrics.RecordNewsMutation("create", "ok")
	s.logger.Infow("news created", "id", entity.ID, "slug", slug, "published", entity.IsPublished)
	return toArticle(entity)
}

// Update 把提交的字段合并到现有记录后整体校验；仅在标题变化时重新派生 slug，
// 首次发布时写入 publishedAt，已发布记录重复发布不会改动发布时间。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Article, error) {
	current, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		metrics.RecordNewsMutation("update", mutationResult(err))
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load news: %w", err)
	}

	fields, err := domain.FieldsOf(current)
	if err != nil {
		metrics.RecordNewsMutation("update", "error")
		return nil, err
	}

	titleChanged := false
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		titleChanged = title != current.Title
		fields.Title = title
	}
	if in.Content != nil {
		fields.Content = strings.TrimSpace(*in.Content)
	}
	if in.Excerpt != nil {
		fields.Excerpt = strings.TrimSpace(*in.Excerpt)
	}

	category, club := fields.Section.Category, fields.Section.ClubName
	if in.Category != nil {
		category = *in.Category
	}
	// 空的社团名称视为未提交。
	if in.ClubName != nil && strings.TrimSpace(*in.ClubName) != "" {
		club = *in.ClubName
	}
	fields.Section = domain.NewSection(category, club)

	if in.Images != nil {
		fields.Images = normaliseImages(*in.Images)
	}
	if in.Author != nil {
		fields.Author = normaliseAuthor(*in.Author)
	}
	if in.IsPublished != nil {
		fields.IsPublished = *in.IsPublished
	}
	if in.Tags != nil {
		fields.Tags = in.Tags.Values()
	}

	verr := domain.NewValidationError()
	if in.EventDate != nil {
		eventDate, err := domain.ParseEventDate(*in.EventDate)
		if err != nil {
			verr.Add("eventDate", err.Error())
		}
		fields.EventDate = eventDate
	}
	fields.CollectErrors(verr)
	if verr.HasErrors() {
		metrics.RecordNewsMutation("update", "invalid")
		return nil, verr
	}

	now := s.now()
	if err := fields.ApplyTo(current); err != nil {
		metrics.RecordNewsMutation("update", "error")
		return nil, err
	}
	if titleChanged {
		slug := domain.DeriveSlug(fields.Title, now)
		current.Slug = &slug
	}
	if current.IsPublished && current.PublishedAt == nil {
		publishedAt := now
		current.PublishedAt = &publishedAt
	}
	current.UpdatedAt = now

	if err := s.repo.Update(ctx, current); err != nil {
		metrics.RecordNewsMutation("update", mutationResult(err))
		if errors.Is(err, domain.ErrDuplicateSlug) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("persist news: %w", err)
	}

	metrics.RecordNewsMutation("update", "ok")
	s.logger.Infow("news updated", "id", current.ID, "slug", current.SlugValue(), "title_changed", titleChanged)
	return toArticle(current)
}

// Delete 物理删除新闻，外部资源站中的图片由调用方负责清理。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		metrics.RecordNewsMutation("delete", mutationResult(err))
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete news: %w", err)
	}
	metrics.RecordNewsMutation("delete", "ok")
	s.logger.Infow("news deleted", "id", id)
	return nil
}

// GetBySlug 按 slug 返回完整新闻，不区分发布状态。
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	entity, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get news by slug: %w", err)
	}
	return toArticle(entity)
}

func toArticle(entity *domain.News) (*Article, error) {
	fields, err := domain.FieldsOf(entity)
	if err != nil {
		return nil, err
	}
	return &Article{
		ID:          entity.ID,
		Title:       entity.Title,
		Slug:        entity.SlugValue(),
		Content:     entity.Content,
		Excerpt:     entity.Excerpt,
		Category:    fields.Section.Category,
		ClubName:    fields.Section.ClubName,
		Images:      fields.Images,
		Author:      entity.Author,
		IsPublished: entity.IsPublished,
		PublishedAt: entity.PublishedAt,
		EventDate:   entity.EventDate,
		Tags:        fields.Tags,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}, nil
}

func normaliseImages(images []domain.Image) []domain.Image {
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		out = append(out, domain.Image{
			URL:     strings.TrimSpace(img.URL),
			AssetID: strings.TrimSpace(img.AssetID),
			Caption: strings.TrimSpace(img.Caption),
		})
	}
	return out
}

func normaliseAuthor(author string) string {
	if trimmed := strings.TrimSpace(author); trimmed != "" {
		return trimmed
	}
	return domain.DefaultAuthor
}

func mutationResult(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateSlug):
		return "duplicate"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
