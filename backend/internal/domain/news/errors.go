package news

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound 表示目标新闻不存在。
	ErrNotFound = errors.New("news not found")
	// ErrDuplicateSlug 表示存储层的 slug 唯一约束冲突。
	ErrDuplicateSlug = errors.New("slug already exists")
)

// ValidationError 汇总一次校验中所有字段的错误，键为 JSON 字段路径（如 images[0].url）。
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError 创建空的校验错误容器。
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add 记录字段错误，同一字段只保留第一条。
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// HasErrors 判断是否存在字段错误。
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil 在没有字段错误时返回 nil，避免把空指针包装成非空 error。
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
