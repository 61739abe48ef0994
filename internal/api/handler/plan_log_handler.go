package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"morning-check/backend/internal/dto"
	"morning-check/backend/internal/service"
	"morning-check/backend/pkg/response"
)

// PlanLogHandler 出勤计划日志模块 HTTP 处理器
type PlanLogHandler struct {
	planLogSvc service.PlanLogService
}

// NewPlanLogHandler 创建 PlanLogHandler
func NewPlanLogHandler(planLogSvc service.PlanLogService) *PlanLogHandler {
	return &PlanLogHandler{planLogSvc: planLogSvc}
}

// Upsert 登记或更新出勤计划日志
// POST /api/v1/plan-logs
func (h *PlanLogHandler) Upsert(c *gin.Context) {
	var req dto.PlanLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22001, "参数校验失败")
		return
	}

	result, created, err := h.planLogSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handlePlanLogError(c, err)
		return
	}

	if created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// List 查询出勤计划日志
// GET /api/v1/plan-logs?user_id=42&date=YYYY-MM-DD（过滤条件均可省略）
func (h *PlanLogHandler) List(c *gin.Context) {
	var userID *int64
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, 22001, "user_id 必须为整数")
			return
		}
		userID = &id
	}

	var date *string
	if raw := c.Query("date"); raw != "" {
		date = &raw
	}

	items, err := h.planLogSvc.List(c.Request.Context(), userID, date)
	if err != nil {
		h.handlePlanLogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

func (h *PlanLogHandler) handlePlanLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 22002, "日期格式必须为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidClockTime):
		response.BadRequest(c, 22003, "时刻格式必须为 HH:MM 或 HH:MM:SS")
	default:
		response.InternalError(c)
	}
}
