package handler

import (
	"net/http"
	"time"

	response "cs-news-portal/backend/internal/infra/common"

	"github.com/gin-gonic/gin"
)

// StatusHandler 提供根路径与运行状态探针。
type StatusHandler struct {
	now func() time.Time
}

// NewStatusHandler 构造 handler。
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{now: time.Now}
}

// Root 返回服务名称。
func (h *StatusHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "CS Department News Portal API"}, nil)
}

// Status 返回运行状态与当前时间。
func (h *StatusHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	}, nil)
}

// NotFound 处理未注册的路由。
func (h *StatusHandler) NotFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.ErrNotFound, "Route not found", nil)
}
