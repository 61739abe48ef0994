package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"morning-check/backend/internal/service"
	"morning-check/backend/pkg/response"
)

// CalendarHandler 日历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Sync 拉取所有订阅源并导入事件
// POST /api/v1/calendar/sync
func (h *CalendarHandler) Sync(c *gin.Context) {
	result, err := h.calendarSvc.Sync(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoCalendarFeeds) {
			response.BadRequest(c, 23001, "未配置日历订阅源")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListEvents 查询同步到的日历事件
// GET /api/v1/calendar/events?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		response.BadRequest(c, 23002, "from 和 to 不能为空")
		return
	}

	items, err := h.calendarSvc.ListEvents(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			response.BadRequest(c, 23003, "日期格式必须为 YYYY-MM-DD")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}
