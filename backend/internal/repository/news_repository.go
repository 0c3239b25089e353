/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 10:40:02
 * @FilePath: \cs-news-portal\backend\internal\repository\news_repository.go
 * @LastEditTime: 2026-10-15 10:40:02
 */
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cs-news-portal/backend/internal/domain/news"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry 是 MySQL 唯一键冲突的错误码。
const mysqlDuplicateEntry = 1062

// likeEscape 用于 LIKE 模式中的转义字符，'!' 在 MySQL 与 SQLite 中都无需额外转义。
const likeEscape = "!"

// NewsListFilter 描述公开列表查询的过滤条件，已发布过滤由仓储强制附加。
type NewsListFilter struct {
	Category string
	Club     string
	Search   string
	Limit    int
	Offset   int
}

// NewsRepository 提供 news 表的读写封装，并把存储层错误翻译为领域错误。
type NewsRepository struct {
	db *gorm.DB
}

// NewNewsRepository 构造仓储实例。
func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// Create 新增新闻，slug 冲突时返回 news.ErrDuplicateSlug。
func (r *NewsRepository) Create(ctx context.Context, entity *news.News) error {
	if entity == nil {
		return errors.New("news entity is nil")
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translateWriteError("create news", err)
	}
	return nil
}

// Update 整行更新已存在的新闻；记录不存在时返回 news.ErrNotFound，不会重新插入。
func (r *NewsRepository) Update(ctx context.Context, entity *news.News) error {
	if entity == nil {
		return errors.New("news entity is nil")
	}
	result := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if result.Error != nil {
		return translateWriteError("update news", result.Error)
	}
	if result.RowsAffected == 0 {
		return news.ErrNotFound
	}
	return nil
}

// Delete 物理删除指定新闻。
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&news.News{})
	if result.Error != nil {
		return fmt.Errorf("delete news: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return news.ErrNotFound
	}
	return nil
}

// FindByID 根据主键查找新闻。
func (r *NewsRepository) FindByID(ctx context.Context, id string) (*news.News, error) {
	var entity news.News
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translateReadError("find news by id", err)
	}
	return &entity, nil
}

// FindBySlug 根据 slug 查找新闻，不附加发布状态过滤。
func (r *NewsRepository) FindBySlug(ctx context.Context, slug string) (*news.News, error) {
	var entity news.News
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&entity).Error; err != nil {
		return nil, translateReadError("find news by slug", err)
	}
	return &entity, nil
}

// ListPublished 返回已发布新闻的摘要（不含正文）与满足条件的总数。
// 排序为 published_at DESC, created_at DESC, id DESC，保证同一时刻发布的记录顺序稳定。
func (r *NewsRepository) ListPublished(ctx context.Context, filter NewsListFilter) ([]news.News, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&news.News{}).
		Scopes(publishedScope(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	records := []news.News{}
	if total == 0 || int64(filter.Offset) >= total {
		return records, total, nil
	}

	query := r.db.WithContext(ctx).
		Model(&news.News{}).
		Scopes(publishedScope(filter)).
		Omit("content").
		Order("published_at DESC").
		Order("created_at DESC").
		Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	return records, total, nil
}

// publishedScope 构造公开列表的过滤条件：已发布为隐式条件，搜索对标题/正文/摘要做不区分大小写的子串匹配。
func publishedScope(filter NewsListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_published = ?", true)
		if category := strings.TrimSpace(filter.Category); category != "" {
			db = db.Where("category = ?", category)
		}
		if club := strings.TrimSpace(filter.Club); club != "" {
			db = db.Where("club_name = ?", club)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			db = db.Where(
				"(LOWER(title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(content) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(excerpt) LIKE ? ESCAPE '"+likeEscape+"')",
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

// escapeLike 让搜索词中的 % 与 _ 按字面匹配。
func escapeLike(s string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return replacer.Replace(s)
}

func translateReadError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return news.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func translateWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		return news.ErrDuplicateSlug
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation 识别唯一约束冲突：优先使用 gorm 的错误翻译，其次识别驱动原生错误。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
