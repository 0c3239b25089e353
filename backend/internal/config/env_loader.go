/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 14:41:06
 * @FilePath: \cs-news-portal\backend\internal\config\env_loader.go
 * @LastEditTime: 2026-10-15 14:41:11
 */
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// envFiles 按优先级从高到低排列，已存在的环境变量不会被覆盖。
var envFiles = []string{".env.local", ".env"}

var (
	envOnce     sync.Once
	envOnceLock sync.Mutex
	skipEnvLoad bool
)

// LoadEnvFiles 只加载一次 .env.local 与 .env；进程环境变量优先于文件内容。
func LoadEnvFiles() {
	envOnceLock.Lock()
	defer envOnceLock.Unlock()

	if skipEnvLoad || os.Getenv("CONFIG_SKIP_ENV_LOAD") == "1" {
		return
	}

	envOnce.Do(func() {
		for _, name := range envFiles {
			path, ok := findEnvFile(name)
			if !ok {
				continue
			}
			// godotenv.Load 不覆盖已有变量，因此先加载的 .env.local 优先级更高。
			if err := godotenv.Load(path); err != nil {
				log.Printf("[config] skip environment file %s: %v", path, err)
				continue
			}
			log.Printf("[config] loaded environment file: %s", path)
		}
	})
}

// SetEnvFileLoadingForTest 控制是否自动加载 env 文件，仅供测试使用。
func SetEnvFileLoadingForTest(enabled bool) {
	envOnceLock.Lock()
	defer envOnceLock.Unlock()

	skipEnvLoad = !enabled
	envOnce = sync.Once{}
}

// findEnvFile 从当前目录向上逐级查找，直到文件系统根目录。
func findEnvFile(name string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
