package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ModeLocal 表示本地模式：SQLite 存储，写接口使用固定编辑身份。
	ModeLocal = "local"
	// ModeOnline 表示在线模式：MySQL 存储，写接口校验 JWT。
	ModeOnline = "online"

	defaultServerPort       = "5000"
	defaultLocalDBRelPath   = "data/news-portal-local.db"
	defaultLocalEditor      = "local-editor"
	defaultCORSOrigins      = "http://localhost:3000,https://res.cloudinary.com"
	defaultPageSize         = 10
	defaultMaxPageSize      = 100
	defaultMutationLimit    = 30
	defaultMutationWindow   = time.Minute
	defaultShutdownDeadline = 10 * time.Second
)

// RuntimeFlags 汇总进程运行所需的配置。
type RuntimeFlags struct {
	Mode   string
	Server ServerConfig
	Local  LocalRuntime
	Auth   AuthConfig
	News   NewsConfig
}

// ServerConfig 描述 HTTP 服务参数。
type ServerConfig struct {
	Port             string
	CORSOrigins      []string
	ShutdownDeadline time.Duration
}

// Addr 返回监听地址。
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// LocalRuntime 描述本地模式下需要的额外配置。
type LocalRuntime struct {
	DBPath string
	Editor string
}

// AuthConfig 描述写接口鉴权参数。
type AuthConfig struct {
	JWTSecret string
}

// NewsConfig 描述列表分页与写接口限流参数。
type NewsConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	MutationLimit   int
	MutationWindow  time.Duration
}

// IsLocal 判断是否运行在本地模式。
func (f RuntimeFlags) IsLocal() bool {
	return f.Mode == ModeLocal
}

// LoadRuntimeFlags 读取环境变量，推导运行模式与各模块参数。
func LoadRuntimeFlags() RuntimeFlags {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE")))
	if mode != ModeLocal {
		mode = ModeOnline
	}

	flags := RuntimeFlags{
		Mode: mode,
		Server: ServerConfig{
			Port:             envString("SERVER_PORT", envString("PORT", defaultServerPort)),
			CORSOrigins:      splitList(envString("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
			ShutdownDeadline: envDuration("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownDeadline),
		},
		Local: LocalRuntime{
			DBPath: normalisePath(defaultLocalDBRelPath),
			Editor: envString("LOCAL_EDITOR", defaultLocalEditor),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		},
		News: NewsConfig{
			DefaultPageSize: envPositiveInt("NEWS_DEFAULT_PAGE_SIZE", defaultPageSize),
			MaxPageSize:     envPositiveInt("NEWS_MAX_PAGE_SIZE", defaultMaxPageSize),
			MutationLimit:   envNonNegativeInt("NEWS_MUTATION_RATE_LIMIT", defaultMutationLimit),
			MutationWindow:  envDuration("NEWS_MUTATION_RATE_WINDOW", defaultMutationWindow),
		},
	}

	if rawPath := strings.TrimSpace(os.Getenv("LOCAL_SQLITE_PATH")); rawPath != "" {
		flags.Local.DBPath = normalisePath(rawPath)
	}
	if flags.News.DefaultPageSize > flags.News.MaxPageSize {
		flags.News.DefaultPageSize = flags.News.MaxPageSize
	}
	return flags
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envPositiveInt(key string, fallback int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

// envNonNegativeInt 允许显式配置 0 关闭功能。
func envNonNegativeInt(key string, fallback int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && parsed >= 0 {
		return parsed
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if parsed, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalisePath 将路径展开为绝对路径，兼容 ~ 前缀与相对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
