package access

import "errors"

// ErrUnauthorized 表示凭证缺失、无效或已过期。
var ErrUnauthorized = errors.New("unauthorized")

// Principal 是通过鉴权后的调用者身份，对核心业务而言只是一个通过/拒绝的结果。
type Principal struct {
	Subject  string `json:"subject"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}
