package news

import (
	"context"
	"fmt"
	"testing"
	"time"

	domain "cs-news-portal/backend/internal/domain/news"
	"cs-news-portal/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// steppingClock 每次调用前进一分钟，便于构造有序的发布时间。
type steppingClock struct {
	current time.Time
}

func (c *steppingClock) Now() time.Time {
	c.current = c.current.Add(time.Minute)
	return c.current
}

func newTestService(t *testing.T, cfg Config) (*Service, *steppingClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.News{}))

	clock := &steppingClock{current: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
	cfg.Clock = clock.Now
	return NewServiceWithConfig(repository.NewNewsRepository(db), nil, cfg), clock
}

func csInput(title string, published bool) CreateInput {
	return CreateInput{
		Title:       title,
		Content:     "Orientation starts on Monday morning.",
		Excerpt:     "short",
		Category:    domain.CategoryCS,
		IsPublished: published,
	}
}

func TestCreateDerivesSlugAndDefaults(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	article, err := svc.Create(ctx, csInput("Welcome to CS Dept", false))
	require.NoError(t, err)

	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "welcome-to-cs-dept", article.Slug)
	assert.Equal(t, domain.DefaultAuthor, article.Author)
	assert.False(t, article.IsPublished)
	assert.Nil(t, article.PublishedAt)
	assert.Empty(t, article.Images)
	assert.Empty(t, article.Tags)
	assert.Empty(t, article.ClubName)
}

func TestCreatePublishedSetsPublishedAt(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	article, err := svc.Create(context.Background(), csInput("Placement Drive Results", true))
	require.NoError(t, err)
	require.NotNil(t, article.PublishedAt)
	assert.True(t, article.PublishedAt.Equal(article.CreatedAt))
}

func TestCreateClubWithoutClubName(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	in := csInput("Club Orientation Night", true)
	in.Category = domain.CategoryClub

	_, err := svc.Create(ctx, in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Club name is required when category is club", verr.Fields["clubName"])

	result, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestCreateDropsClubForNonClubCategory(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	in := csInput("Campus Cleanliness Drive", true)
	in.Category = domain.CategoryCampus
	in.ClubName = "seva-club"

	article, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCampus, article.Category)
	assert.Empty(t, article.ClubName)
}

func TestCreateCollectsEventDateError(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	in := csInput("Hi", false)
	in.EventDate = "someday"

	_, err := svc.Create(context.Background(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "eventDate")
	assert.Contains(t, verr.Fields, "title")
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	_, err := svc.Create(ctx, csInput("Hackathon Winners", true))
	require.NoError(t, err)

	_, err = svc.Create(ctx, csInput("Hackathon winners!", true))
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestCreateNormalisesTagsAndImages(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	in := csInput("Python Workshop Announcement", true)
	require.NoError(t, in.Tags.UnmarshalParam("workshop, python ,"))
	in.Images = []domain.Image{{URL: " https://res.cloudinary.com/demo/p.png ", AssetID: " news/p "}}

	article, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"workshop", "python"}, article.Tags)
	require.Len(t, article.Images, 1)
	assert.Equal(t, "https://res.cloudinary.com/demo/p.png", article.Images[0].URL)
	assert.Equal(t, "news/p", article.Images[0].AssetID)
}

func TestUpdateRepublishKeepsPublishedAt(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	created, err := svc.Create(ctx, csInput("Faculty Research Grant", false))
	require.NoError(t, err)
	require.Nil(t, created.PublishedAt)

	published := true
	first, err := svc.Update(ctx, created.ID, UpdateInput{IsPublished: &published})
	require.NoError(t, err)
	require.NotNil(t, first.PublishedAt)

	second, err := svc.Update(ctx, created.ID, UpdateInput{IsPublished: &published})
	require.NoError(t, err)
	require.NotNil(t, second.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	unpublished := false
	third, err := svc.Update(ctx, created.ID, UpdateInput{IsPublished: &unpublished})
	require.NoError(t, err)
	assert.False(t, third.IsPublished)
	require.NotNil(t, third.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*third.PublishedAt))
}

func TestUpdateReslugsOnlyWhenTitleChanges(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	created, err := svc.Create(ctx, csInput("Seminar on Compilers", true))
	require.NoError(t, err)

	content := "Updated body text for the seminar."
	sameTitle := "  Seminar on Compilers "
	kept, err := svc.Update(ctx, created.ID, UpdateInput{Title: &sameTitle, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "seminar-on-compilers", kept.Slug)
	assert.Equal(t, content, kept.Content)

	newTitle := "Seminar on Modern Compilers"
	renamed, err := svc.Update(ctx, created.ID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "seminar-on-modern-compilers", renamed.Slug)

	_, err = svc.GetBySlug(ctx, "seminar-on-compilers")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateTitleCollision(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	_, err := svc.Create(ctx, csInput("Annual Sports Meet", true))
	require.NoError(t, err)
	other, err := svc.Create(ctx, csInput("Annual Cultural Fest", true))
	require.NoError(t, err)

	title := "Annual Sports Meet"
	_, err = svc.Update(ctx, other.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestUpdateValidatesMergedRecord(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	created, err := svc.Create(ctx, csInput("Robotics Club Kickoff", true))
	require.NoError(t, err)

	category := domain.CategoryClub
	empty := ""
	_, err = svc.Update(ctx, created.ID, UpdateInput{Category: &category, ClubName: &empty})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "clubName")

	stored, err := svc.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCS, stored.Category)

	club := "kriti-club"
	moved, err := svc.Update(ctx, created.ID, UpdateInput{Category: &category, ClubName: &club})
	require.NoError(t, err)
	assert.Equal(t, "kriti-club", moved.ClubName)

	// 空社团名视为未提交，保留现有社团。
	kept, err := svc.Update(ctx, created.ID, UpdateInput{ClubName: &empty})
	require.NoError(t, err)
	assert.Equal(t, "kriti-club", kept.ClubName)
}

func TestUpdateAndDeleteMissingRecord(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	title := "Does Not Matter"
	_, err := svc.Update(ctx, "missing-id", UpdateInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "missing-id"), domain.ErrNotFound)
}

func TestDeleteRemovesRecord(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	created, err := svc.Create(ctx, csInput("Temporary Notice", true))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetBySlug(ctx, created.Slug)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBySlugReturnsUnpublished(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	created, err := svc.Create(ctx, csInput("Upcoming AI Conference - Draft", false))
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, "upcoming-ai-conference-draft")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, got.IsPublished)
	assert.Equal(t, created.Content, got.Content)
}
