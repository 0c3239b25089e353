package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "cs-news-portal/backend/internal/domain/news"
	"cs-news-portal/backend/internal/infra/metrics"
	"cs-news-portal/backend/internal/repository"
)

// Summary 是列表中返回的摘要视图，不含正文。
type Summary struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
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

// ListFilter 描述公开列表查询参数。
type ListFilter struct {
	Category string
	Club     string
	Search   string
	Page     int
	PageSize int
}

// ListResult 描述分页结果。
type ListResult struct {
	Items       []Summary
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	PageSize    int
}

// List 返回已发布新闻的分页摘要。超出范围的页码返回空列表与准确的总数。
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	return s.list(ctx, filter, listScope(filter))
}

// ListByCategory 返回指定分类下的已发布新闻。
func (s *Service) ListByCategory(ctx context.Context, category string, page, pageSize int) (*ListResult, error) {
	filter := ListFilter{Category: category, Page: page, PageSize: pageSize}
	return s.list(ctx, filter, "category")
}

// ListByClub 返回指定社团的已发布新闻。
func (s *Service) ListByClub(ctx context.Context, club string, page, pageSize int) (*ListResult, error) {
	filter := ListFilter{Club: club, Page: page, PageSize: pageSize}
	return s.list(ctx, filter, "club")
}

func (s *Service) list(ctx context.Context, filter ListFilter, scope string) (*ListResult, error) {
	started := time.Now()
	defer func() { metrics.ObserveNewsList(scope, time.Since(started)) }()

	page, pageSize := s.normalisePagination(filter.Page, filter.PageSize)

	records, total, err := s.repo.ListPublished(ctx, repository.NewsListFilter{
		Category: strings.TrimSpace(filter.Category),
		Club:     strings.TrimSpace(filter.Club),
		Search:   strings.TrimSpace(filter.Search),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	items := make([]Summary, 0, len(records))
	for i := range records {
		summary, err := toSummary(&records[i])
		if err != nil {
			return nil, err
		}
		items = append(items, summary)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return &ListResult{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		PageSize:    pageSize,
	}, nil
}

func (s *Service) normalisePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

func listScope(filter ListFilter) string {
	switch {
	case strings.TrimSpace(filter.Search) != "":
		return "search"
	case strings.TrimSpace(filter.Club) != "":
		return "club"
	case strings.TrimSpace(filter.Category) != "":
		return "category"
	default:
		return "all"
	}
}

func toSummary(entity *domain.News) (Summary, error) {
	fields, err := domain.FieldsOf(entity)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		ID:          entity.ID,
		Title:       entity.Title,
		Slug:        entity.SlugValue(),
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
