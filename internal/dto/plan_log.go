package dto

// PlanLogRequest 登记/更新出勤计划日志
type PlanLogRequest struct {
	UserID            int64  `json:"user_id"             binding:"required"`
	Date              string `json:"date"                binding:"required"`
	ExpectedLoginTime string `json:"expected_login_time" binding:"required"`
}

// PlanLogResponse 出勤计划日志
type PlanLogResponse struct {
	PlanLogID         string `json:"plan_log_id"`
	UserID            int64  `json:"user_id"`
	Date              string `json:"date"`
	ExpectedLoginTime string `json:"expected_login_time"`
	RegisteredAt      string `json:"registered_at"`
}
