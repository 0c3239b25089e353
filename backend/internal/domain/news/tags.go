package news

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TagsInput 接收两种入参形态：JSON 数组或逗号分隔的字符串。
// 进入领域层后统一为有序、去空白、去空串的标签列表，下游不再关心原始形态。
type TagsInput struct {
	values []string
}

// TagsFromList 由结构化列表构造标签入参。
func TagsFromList(list []string) TagsInput {
	return TagsInput{values: normaliseTags(list)}
}

// TagsFromText 由逗号分隔字符串构造标签入参。
func TagsFromText(text string) TagsInput {
	return TagsInput{values: normaliseTags(strings.Split(text, ","))}
}

// Values 返回规范化后的标签副本。
func (t TagsInput) Values() []string {
	return append([]string{}, t.values...)
}

// UnmarshalJSON 支持 ["a","b"]、"a, b" 与 null 三种写法。
func (t *TagsInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		t.values = []string{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("tags must be a list of strings: %w", err)
		}
		*t = TagsFromList(list)
		return nil
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("tags must be a string: %w", err)
		}
		*t = TagsFromText(text)
		return nil
	default:
		return fmt.Errorf("tags must be a list or a comma separated string")
	}
}

// UnmarshalParam 供表单绑定使用，按逗号分隔处理。
func (t *TagsInput) UnmarshalParam(param string) error {
	*t = TagsFromText(param)
	return nil
}

// MarshalJSON 输出规范化后的列表。
func (t TagsInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Values())
}

func normaliseTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
