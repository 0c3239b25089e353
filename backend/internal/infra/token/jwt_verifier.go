/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 13:12:40
 * @FilePath: \cs-news-portal\backend\internal\infra\token\jwt_verifier.go
 * @LastEditTime: 2026-10-15 13:12:40
 */
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cs-news-portal/backend/internal/domain/access"

	"github.com/golang-jwt/jwt/v5"
)

const (
	claimSubject  = "sub"
	claimUserID   = "userId"
	claimUsername = "username"
	claimRole     = "role"
)

// JWTVerifier 使用共享密钥校验 HS256 令牌，并把 claims 转换为调用者身份。
// 令牌的签发由外部认证服务负责，这里只做校验。
type JWTVerifier struct {
	secret []byte
	leeway time.Duration
}

// NewJWTVerifier 创建校验器，secret 为空时所有凭证都会被拒绝。
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Authorize 校验凭证并返回身份；任何失败都归一为 access.ErrUnauthorized。
func (v *JWTVerifier) Authorize(_ context.Context, credential string) (access.Principal, error) {
	raw := strings.TrimSpace(credential)
	if raw == "" || v == nil || len(v.secret) == 0 {
		return access.Principal{}, access.ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !parsed.Valid {
		return access.Principal{}, fmt.Errorf("%w: %v", access.ErrUnauthorized, err)
	}

	subject := stringClaim(claims, claimSubject)
	if subject == "" {
		// 兼容把用户 ID 放在 userId 字段中的令牌。
		subject = stringClaim(claims, claimUserID)
	}
	if subject == "" {
		return access.Principal{}, fmt.Errorf("%w: missing subject", access.ErrUnauthorized)
	}

	return access.Principal{
		Subject:  subject,
		Username: stringClaim(claims, claimUsername),
		Role:     stringClaim(claims, claimRole),
	}, nil
}

// Sign 为指定身份签发 HS256 令牌，供运维脚本与测试构造凭证。
func (v *JWTVerifier) Sign(principal access.Principal, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := jwt.MapClaims{
		claimSubject: principal.Subject,
		"exp":        time.Now().Add(ttl).Unix(),
	}
	if principal.Username != "" {
		claims[claimUsername] = principal.Username
	}
	if principal.Role != "" {
		claims[claimRole] = principal.Role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
