package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cs-news-portal/backend/internal/domain/news"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestNewsRepository(t *testing.T) (*NewsRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&news.News{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewNewsRepository(db), db
}

var baseTime = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func newsRecord(id, title, category string, published bool, offset time.Duration) *news.News {
	slug := news.DeriveSlug(title, baseTime)
	record := &news.News{
		ID:          id,
		Title:       title,
		Slug:        &slug,
		Content:     "Content for " + title,
		Excerpt:     "Excerpt for " + title,
		Category:    category,
		Images:      []byte(`[]`),
		Tags:        []byte(`[]`),
		Author:      news.DefaultAuthor,
		IsPublished: published,
		CreatedAt:   baseTime.Add(offset),
		UpdatedAt:   baseTime.Add(offset),
	}
	if published {
		at := baseTime.Add(offset)
		record.PublishedAt = &at
	}
	return record
}

func TestNewsRepositoryCreateRejectsDuplicateSlug(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newsRecord("n-1", "Lab Opening", news.CategoryCS, true, 0)); err != nil {
		t.Fatalf("create first: %v", err)
	}
	err := repo.Create(ctx, newsRecord("n-2", "Lab opening!", news.CategoryCS, true, time.Minute))
	if !errors.Is(err, news.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestNewsRepositoryUpdateMissingRecord(t *testing.T) {
	repo, db := newTestNewsRepository(t)
	ctx := context.Background()

	err := repo.Update(ctx, newsRecord("ghost", "Ghost Record", news.CategoryCS, false, 0))
	if !errors.Is(err, news.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var count int64
	if err := db.Model(&news.News{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("update must not insert, found %d rows", count)
	}
}

func TestNewsRepositoryUpdateWritesAllColumns(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	record := newsRecord("n-1", "Robotics Meetup", news.CategoryClub, true, 0)
	club := "kriti-club"
	record.ClubName = &club
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	// 切换到非 club 分类时 club_name 需要被写成 NULL。
	record.Category = news.CategoryEvents
	record.ClubName = nil
	record.IsPublished = false
	if err := repo.Update(ctx, record); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.FindByID(ctx, "n-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.ClubName != nil {
		t.Fatalf("expected club name cleared, got %q", *stored.ClubName)
	}
	if stored.Category != news.CategoryEvents || stored.IsPublished {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
	if !stored.CreatedAt.Equal(record.CreatedAt) {
		t.Fatalf("created_at changed: %v", stored.CreatedAt)
	}
}

func TestNewsRepositoryDeleteAndFind(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newsRecord("n-1", "Farewell Party", news.CategoryCampus, false, 0)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindBySlug(ctx, "farewell-party")
	if err != nil {
		t.Fatalf("find by slug: %v", err)
	}
	if got.ID != "n-1" {
		t.Fatalf("unexpected id %s", got.ID)
	}

	if err := repo.Delete(ctx, "n-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "n-1"); !errors.Is(err, news.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.FindBySlug(ctx, "farewell-party"); !errors.Is(err, news.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNewsRepositoryListPublishedFiltersAndOrders(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	records := []*news.News{
		newsRecord("a", "Older CS News", news.CategoryCS, true, 0),
		newsRecord("b", "Newer CS News", news.CategoryCS, true, time.Hour),
		newsRecord("c", "Draft CS News", news.CategoryCS, false, 2*time.Hour),
		newsRecord("d", "Alumni Reunion", news.CategoryAlumni, true, 3*time.Hour),
	}
	for _, r := range records {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	items, total, err := repo.ListPublished(ctx, NewsListFilter{Category: news.CategoryCS, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 published cs records, got total=%d len=%d", total, len(items))
	}
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
	if items[0].Content != "" {
		t.Fatalf("list must omit content, got %q", items[0].Content)
	}
}

func TestNewsRepositoryListPublishedTieBreaksOnCreatedAt(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	// 发布时间相同，后创建的记录 id 字典序更小，避免被 id DESC 兜底掩盖。
	early := newsRecord("z-early", "Exam Schedule Released", news.CategoryCS, true, 0)
	late := newsRecord("a-late", "Lab Hours Extended", news.CategoryCS, true, 0)
	late.CreatedAt = late.CreatedAt.Add(500 * time.Millisecond)
	late.UpdatedAt = late.CreatedAt
	for _, r := range []*news.News{early, late} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	items, _, err := repo.ListPublished(ctx, NewsListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 records, got %d", len(items))
	}
	if !items[0].PublishedAt.Equal(*items[1].PublishedAt) {
		t.Fatalf("fixture must share published_at: %v vs %v", items[0].PublishedAt, items[1].PublishedAt)
	}
	if items[0].ID != "a-late" || items[1].ID != "z-early" {
		t.Fatalf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestNewsRepositoryListPublishedSearch(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	byTitle := newsRecord("t", "Quantum Seminar", news.CategoryEvents, true, 0)
	byExcerpt := newsRecord("e", "Guest Lecture", news.CategoryEvents, true, time.Minute)
	byExcerpt.Excerpt = "A talk on QUANTUM computing"
	literal := newsRecord("l", "Scores at 100% pass rate", news.CategoryCS, true, 2*time.Minute)
	for _, r := range []*news.News{byTitle, byExcerpt, literal} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	items, total, err := repo.ListPublished(ctx, NewsListFilter{Search: "quantum", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", total, len(items))
	}

	// % 按字面匹配，不应退化为匹配全部记录。
	_, total, err = repo.ListPublished(ctx, NewsListFilter{Search: "100%", Limit: 10})
	if err != nil {
		t.Fatalf("search literal: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 literal match, got %d", total)
	}

	// 搜索与分类过滤是 AND 关系。
	_, total, err = repo.ListPublished(ctx, NewsListFilter{Search: "quantum", Category: news.CategoryCS, Limit: 10})
	if err != nil {
		t.Fatalf("search with category: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no match, got %d", total)
	}
}

func TestNewsRepositoryListPublishedOutOfRange(t *testing.T) {
	repo, _ := newTestNewsRepository(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newsRecord("a", "Only Record", news.CategoryCS, true, 0)); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := repo.ListPublished(ctx, NewsListFilter{Limit: 10, Offset: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 0 {
		t.Fatalf("expected empty page with total 1, got total=%d len=%d", total, len(items))
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike("50%_off!"); got != "50!%!_off!!" {
		t.Fatalf("unexpected escape result %q", got)
	}
}
