/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 14:20:33
 * @FilePath: \cs-news-portal\backend\internal\handler\news_handler.go
 * @LastEditTime: 2026-10-15 14:20:33
 */
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	domain "cs-news-portal/backend/internal/domain/news"
	response "cs-news-portal/backend/internal/infra/common"
	appLogger "cs-news-portal/backend/internal/infra/logger"
	"cs-news-portal/backend/internal/middleware"
	newssvc "cs-news-portal/backend/internal/service/news"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewsHandler 提供新闻的 HTTP 入口：列表/详情公开访问，写操作由路由层挂载鉴权。
type NewsHandler struct {
	service *newssvc.Service
	logger  *zap.SugaredLogger
}

// NewNewsHandler 构造 handler。
func NewNewsHandler(service *newssvc.Service) *NewsHandler {
	baseLogger := appLogger.S().With("component", "news.handler")
	return &NewsHandler{service: service, logger: baseLogger}
}

// 请求体不做 binding 校验，所有字段错误由领域层一次性收集返回。
type createNewsRequest struct {
	Title       string           `json:"title" form:"title"`
	Content     string           `json:"content" form:"content"`
	Excerpt     string           `json:"excerpt" form:"excerpt"`
	Category    string           `json:"category" form:"category"`
	ClubName    string           `json:"clubName" form:"clubName"`
	Images      []domain.Image   `json:"images" form:"-"`
	Author      string           `json:"author" form:"author"`
	IsPublished bool             `json:"isPublished" form:"isPublished"`
	EventDate   string           `json:"eventDate" form:"eventDate"`
	Tags        domain.TagsInput `json:"tags" form:"tags"`
}

type updateNewsRequest struct {
	Title       *string           `json:"title" form:"title"`
	Content     *string           `json:"content" form:"content"`
	Excerpt     *string           `json:"excerpt" form:"excerpt"`
	Category    *string           `json:"category" form:"category"`
	ClubName    *string           `json:"clubName" form:"clubName"`
	Images      *[]domain.Image   `json:"images" form:"-"`
	Author      *string           `json:"author" form:"author"`
	IsPublished *bool             `json:"isPublished" form:"isPublished"`
	EventDate   *string           `json:"eventDate" form:"eventDate"`
	Tags        *domain.TagsInput `json:"tags" form:"tags"`
}

// listPayload 保持列表接口的响应结构：news + pagination。
type listPayload struct {
	News       []newssvc.Summary `json:"news"`
	Pagination paginationPayload `json:"pagination"`
}

type paginationPayload struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// Ping 用于确认新闻接口可用。
func (h *NewsHandler) Ping(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "News API is working!"}, nil)
}

// List 返回已发布新闻列表，支持 category/club/search 过滤与 page/limit 分页。
func (h *NewsHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := newssvc.ListFilter{
		Category: c.Query("category"),
		Club:     c.Query("club"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: limit,
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Errorw("list news failed", "error", err, "category", filter.Category, "club", filter.Club, "search", filter.Search)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list news failed", nil)
		return
	}
	writeList(c, result)
}

// ListByCategory 返回指定分类的已发布新闻。
func (h *NewsHandler) ListByCategory(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	page, limit := parsePagination(c)

	result, err := h.service.ListByCategory(c.Request.Context(), category, page, limit)
	if err != nil {
		h.logger.Errorw("list news by category failed", "error", err, "category", category)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list news failed", nil)
		return
	}
	writeList(c, result)
}

// ListByClub 返回指定社团的已发布新闻。
func (h *NewsHandler) ListByClub(c *gin.Context) {
	club := strings.TrimSpace(c.Param("clubName"))
	page, limit := parsePagination(c)

	result, err := h.service.ListByClub(c.Request.Context(), club, page, limit)
	if err != nil {
		h.logger.Errorw("list news by club failed", "error", err, "club", club)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list news failed", nil)
		return
	}
	writeList(c, result)
}

// Get 按 slug 返回完整新闻，包含未发布的记录。
func (h *NewsHandler) Get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	article, err := h.service.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.writeError(c, "get news", err, "slug", slug)
		return
	}
	response.Success(c, http.StatusOK, article, nil)
}

// Create 新增新闻。
func (h *NewsHandler) Create(c *gin.Context) {
	var req createNewsRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	article, err := h.service.Create(c.Request.Context(), newssvc.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    req.Category,
		ClubName:    req.ClubName,
		Images:      req.Images,
		Author:      req.Author,
		IsPublished: req.IsPublished,
		EventDate:   req.EventDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeError(c, "create news", err, "title", req.Title, "principal", principalSubject(c))
		return
	}

	h.logger.Infow("news created", "id", article.ID, "slug", article.Slug, "principal", principalSubject(c))
	response.Created(c, article, nil)
}

// Update 部分更新新闻，未提交的字段保持不变。
func (h *NewsHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid id", nil)
		return
	}

	var req updateNewsRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	article, err := h.service.Update(c.Request.Context(), id, newssvc.UpdateInput{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    req.Category,
		ClubName:    req.ClubName,
		Images:      req.Images,
		Author:      req.Author,
		IsPublished: req.IsPublished,
		EventDate:   req.EventDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeError(c, "update news", err, "id", id, "principal", principalSubject(c))
		return
	}

	h.logger.Infow("news updated", "id", article.ID, "slug", article.Slug, "principal", principalSubject(c))
	response.Success(c, http.StatusOK, article, nil)
}

// Delete 删除新闻。
func (h *NewsHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid id", nil)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete news", err, "id", id, "principal", principalSubject(c))
		return
	}

	h.logger.Infow("news deleted", "id", id, "principal", principalSubject(c))
	response.Success(c, http.StatusOK, gin.H{"message": "News deleted successfully"}, nil)
}

// writeError 把领域错误映射为统一错误码，未知错误只记录日志并返回通用信息。
func (h *NewsHandler) writeError(c *gin.Context, op string, err error, keysAndValues ...any) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Fail(c, http.StatusBadRequest, response.ErrValidationFailed, "Validation failed", verr.Fields)
	case errors.Is(err, domain.ErrDuplicateSlug):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateSlug, "Slug already exists", nil)
	case errors.Is(err, domain.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, "News not found", nil)
	default:
		h.logger.Errorw(op+" failed", append([]any{"error", err}, keysAndValues...)...)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "Internal server error", nil)
	}
}

func writeList(c *gin.Context, result *newssvc.ListResult) {
	payload := listPayload{
		News: result.Items,
		Pagination: paginationPayload{
			Current: result.CurrentPage,
			Pages:   result.TotalPages,
			Total:   result.TotalCount,
		},
	}
	meta := response.MetaPagination{
		Page:         result.CurrentPage,
		PageSize:     result.PageSize,
		TotalItems:   result.TotalCount,
		TotalPages:   result.TotalPages,
		CurrentCount: len(result.Items),
	}
	response.Success(c, http.StatusOK, payload, meta)
}

// parsePagination 读取 page/limit，非法值交给服务层按默认值处理。
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	return page, limit
}

func principalSubject(c *gin.Context) string {
	if principal, ok := middleware.PrincipalFrom(c); ok {
		return principal.Subject
	}
	return ""
}
