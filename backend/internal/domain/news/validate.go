package news

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = newFieldValidator()

// fieldLabels 把 JSON 字段映射为提示文案中使用的名称。
var fieldLabels = map[string]string{
	"title":   "Title",
	"content": "Content",
	"excerpt": "Excerpt",
	"author":  "Author name",
	"url":     "Image url",
	"assetId": "Image asset id",
	"tags":    "Tag",
}

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误路径使用 JSON 字段名，便于前端定位。
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate 校验完整的字段集合，一次性返回所有字段错误。
func (f Fields) Validate() error {
	verr := NewValidationError()
	f.CollectErrors(verr)
	return verr.OrNil()
}

// CollectErrors 把字段级与分类/社团约束的错误追加到 verr。
func (f Fields) CollectErrors(verr *ValidationError) {
	if err := fieldValidator.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.Add(fieldPath(fe), fieldMessage(fe))
			}
		} else {
			verr.Add("news", err.Error())
		}
	}

	if field, err := f.Section.Validate(); err != nil {
		verr.Add(field, sectionMessage(err))
	}
}

// ParseEventDate 解析活动日期，支持 yyyy-MM-dd 与 RFC3339，空串表示不设置。
func ParseEventDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("Event date %q is not a valid date", raw)
}

// fieldPath 去掉顶层结构体名，例如 Fields.images[0].url -> images[0].url。
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	name, _, _ := strings.Cut(fe.Field(), "[")
	label, ok := fieldLabels[name]
	if !ok {
		label = name
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func sectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return "Category must be one of: " + strings.Join(categories, ", ")
	case errors.Is(err, ErrMissingClub):
		return "Club name is required when category is club"
	case errors.Is(err, ErrUnexpectedClub):
		return "Club name is only allowed when category is club"
	case errors.Is(err, ErrInvalidClub):
		return "Invalid club name"
	default:
		return err.Error()
	}
}
