package dto

// ViolationResponse 单条违规（未按时登录或计划晚于勤务指定上限）
type ViolationResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Date     string `json:"date"`
	Reason   string `json:"reason"`
}

// CheckResponse 一次登录检查的结果
// MissedLogins 仅包含本次轮询需要上报的违规；
// 已进入静默期或已登录的记录不会出现在列表中
type CheckResponse struct {
	CheckedAt    string              `json:"checked_at"`
	MissedLogins []ViolationResponse `json:"missed_logins"`
}
