package news

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// MaxSlugLength 限制 slug 的最大长度。
const MaxSlugLength = 100

// reservedSlugSuffix 追加在与固定路由冲突的 slug 之后。
const reservedSlugSuffix = "-news"

// reservedSlugs 与 /api/news/ 下的固定单段路由同名，按 slug 查询时会被路由遮蔽。
var reservedSlugs = map[string]struct{}{
	"test": {},
}

// DeriveSlug 根据标题生成 URL 安全的 slug。
// 仅保留 ASCII 字母、数字与空白，空白折叠为单个连字符；结果为空时回退为 news-<毫秒时间戳>。
func DeriveSlug(title string, now time.Time) string {
	lowered := strings.ToLower(title)

	stripped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, lowered)

	// strings.Fields 同时完成空白折叠与首尾裁剪，原始连字符已在上一步被剔除。
	slug := strings.Join(strings.Fields(stripped), "-")
	slug = collapseHyphens(slug)
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}

	if slug == "" {
		slug = fmt.Sprintf("news-%d", now.UnixMilli())
	}
	if _, ok := reservedSlugs[slug]; ok {
		slug += reservedSlugSuffix
	}
	return slug
}

func collapseHyphens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteByte(ch)
	}
	return b.String()
}
