/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 10:15:40
 * @FilePath: \cs-news-portal\backend\internal\domain\news\entity.go
 * @LastEditTime: 2026-10-15 10:15:40
 */
package news

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DefaultAuthor 在未指定作者时使用。
const DefaultAuthor = "CS Department"

// News 对应 news 表中的一条新闻记录。
type News struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`                                                   // UUID 主键，由系统分配
	Title       string         `gorm:"size:200;not null" json:"title"`                                                 // 标题（5-200 字符）
	Slug        *string        `gorm:"size:100;uniqueIndex:idx_news_slug" json:"slug"`                                 // 由标题派生的唯一 slug，允许为空
	Content     string         `gorm:"type:text;not null" json:"content"`                                              // 正文
	Excerpt     string         `gorm:"size:300;not null" json:"excerpt"`                                               // 摘要（<=300 字符）
	Category    string         `gorm:"size:16;not null;index:idx_news_category_published,priority:1" json:"category"` // 分类
	ClubName    *string        `gorm:"size:32;index:idx_news_club" json:"clubName,omitempty"`                          // 社团，仅 club 分类存在
	Images      datatypes.JSON `gorm:"type:json" json:"images"`                                                        // 图片列表（JSON）
	Author      string         `gorm:"size:100;not null" json:"author"`                                                // 作者
	IsPublished bool           `gorm:"index;not null" json:"isPublished"`                                              // 是否已发布
	PublishedAt *time.Time     `gorm:"index:idx_news_category_published,priority:2" json:"publishedAt"`               // 首次发布时间
	EventDate   *time.Time     `json:"eventDate"`                                                                      // 活动日期，可为空
	Tags        datatypes.JSON `gorm:"type:json" json:"tags"`                                                          // 标签列表（JSON）
	CreatedAt   time.Time      `json:"createdAt"`                                                                      // 创建时间
	UpdatedAt   time.Time      `json:"updatedAt"`                                                                      // 更新时间
}

// TableName 指定数据库表名。
func (News) TableName() string {
	return "news"
}

// Image 描述已上传到外部资源站的图片引用。
type Image struct {
	URL     string `json:"url" validate:"required"`
	AssetID string `json:"assetId" validate:"required"`
	Caption string `json:"caption,omitempty"`
}

// Fields 是新闻中可由调用方编辑的部分，校验总是针对合并后的完整 Fields 进行。
type Fields struct {
	Title       string     `json:"title" validate:"required,min=5,max=200"`
	Content     string     `json:"content" validate:"required,min=10"`
	Excerpt     string     `json:"excerpt" validate:"required,max=300"`
	Section     Section    `json:"-" validate:"-"`
	Images      []Image    `json:"images" validate:"dive"`
	Author      string     `json:"author" validate:"required,max=100"`
	IsPublished bool       `json:"isPublished"`
	EventDate   *time.Time `json:"eventDate"`
	Tags        []string   `json:"tags" validate:"dive,max=50"`
}

// FieldsOf 从持久化记录还原可编辑字段。
func FieldsOf(n *News) (Fields, error) {
	images, err := n.DecodeImages()
	if err != nil {
		return Fields{}, err
	}
	tags, err := n.DecodeTags()
	if err != nil {
		return Fields{}, err
	}
	club := ""
	if n.ClubName != nil {
		club = *n.ClubName
	}
	return Fields{
		Title:       n.Title,
		Content:     n.Content,
		Excerpt:     n.Excerpt,
		Section:     Section{Category: n.Category, ClubName: club},
		Images:      images,
		Author:      n.Author,
		IsPublished: n.IsPublished,
		EventDate:   n.EventDate,
		Tags:        tags,
	}, nil
}

// ApplyTo 把字段写回持久化记录，不处理 slug 与发布时间。
func (f Fields) ApplyTo(n *News) error {
	images := f.Images
	if images == nil {
		images = []Image{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	n.Title = f.Title
	n.Content = f.Content
	n.Excerpt = f.Excerpt
	n.Category = f.Section.Category
	n.ClubName = nil
	if f.Section.ClubName != "" {
		club := f.Section.ClubName
		n.ClubName = &club
	}
	n.Images = imagesJSON
	n.Author = f.Author
	n.IsPublished = f.IsPublished
	n.EventDate = f.EventDate
	n.Tags = tagsJSON
	return nil
}

// DecodeImages 解析 JSON 图片列表。
func (n *News) DecodeImages() ([]Image, error) {
	images := []Image{}
	if len(n.Images) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(n.Images, &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return images, nil
}

// DecodeTags 解析 JSON 标签列表。
func (n *News) DecodeTags() ([]string, error) {
	tags := []string{}
	if len(n.Tags) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(n.Tags, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// SlugValue 返回 slug，为空时返回空字符串。
func (n *News) SlugValue() string {
	if n.Slug == nil {
		return ""
	}
	return *n.Slug
}
