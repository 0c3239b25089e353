/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 10:02:11
 * @FilePath: \cs-news-portal\backend\internal\domain\news\taxonomy.go
 * @LastEditTime: 2026-10-15 10:02:11
 */
package news

import (
	"errors"
	"strings"
)

const (
	CategoryCS     = "cs"
	CategoryAlumni = "alumni"
	CategoryClub   = "club"
	CategoryCampus = "campus"
	CategoryEvents = "events"

	// DefaultCategory 在调用方未指定分类时使用。
	DefaultCategory = CategoryCS
)

var (
	// ErrInvalidCategory 表示分类不在固定枚举中。
	ErrInvalidCategory = errors.New("invalid category")
	// ErrMissingClub 表示分类为 club 但未提供社团名称。
	ErrMissingClub = errors.New("club name is required for club news")
	// ErrUnexpectedClub 表示非 club 分类却携带了社团名称。
	ErrUnexpectedClub = errors.New("club name is only allowed for club news")
	// ErrInvalidClub 表示社团名称不在固定枚举中。
	ErrInvalidClub = errors.New("invalid club name")
)

// categories 保持声明顺序，用于错误提示。
var categories = []string{CategoryCS, CategoryAlumni, CategoryClub, CategoryCampus, CategoryEvents}

var clubs = []string{
	"disha-club",
	"aarogyam-club",
	"soorma-club",
	"sambhavna-club",
	"jigyasa-club",
	"kriti-club",
	"sanskriti-club",
	"udyam-club",
	"rakshak-club",
	"srijan-shilpi",
	"seva-club",
}

// Categories 返回全部合法分类。
func Categories() []string {
	return append([]string(nil), categories...)
}

// Clubs 返回全部合法社团标识。
func Clubs() []string {
	return append([]string(nil), clubs...)
}

// ValidateCategory 校验分类是否合法。
func ValidateCategory(category string) error {
	for _, c := range categories {
		if c == category {
			return nil
		}
	}
	return ErrInvalidCategory
}

// ValidateClub 校验分类与社团的组合：仅当分类为 club 时社团必填且必须在枚举内。
func ValidateClub(category, clubName string) error {
	if category != CategoryClub {
		if clubName != "" {
			return ErrUnexpectedClub
		}
		return nil
	}
	if clubName == "" {
		return ErrMissingClub
	}
	for _, c := range clubs {
		if c == clubName {
			return nil
		}
	}
	return ErrInvalidClub
}

// Section 把分类与社团作为一个整体建模，避免部分更新绕过跨字段约束。
type Section struct {
	Category string
	ClubName string
}

// NewSection 规范化分类/社团组合：空分类回退为 cs，非 club 分类直接丢弃社团名称。
func NewSection(category, clubName string) Section {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	clubName = strings.TrimSpace(clubName)
	if category != CategoryClub {
		clubName = ""
	}
	return Section{Category: category, ClubName: clubName}
}

// Validate 先校验分类，再校验社团；返回的字段名与 JSON 字段一致。
func (s Section) Validate() (field string, err error) {
	if err := ValidateCategory(s.Category); err != nil {
		return "category", err
	}
	if err := ValidateClub(s.Category, s.ClubName); err != nil {
		return "clubName", err
	}
	return "", nil
}

// IsClub 判断是否为社团新闻。
func (s Section) IsClub() bool {
	return s.Category == CategoryClub
}
