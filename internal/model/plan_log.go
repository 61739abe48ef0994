package model

import "time"

// PlanLog 出勤计划登记日志表 — 对应 plan_logs，(user_id, date) 唯一
// 记录用户每次登记/修改计划登录时刻的最新一笔
type PlanLog struct {
	PlanLogID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_log_id"`
	UserID            int64     `gorm:"not null;uniqueIndex:uniq_plan_logs_user_date"  json:"user_id"`
	Date              string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_plan_logs_user_date" json:"date"`
	ExpectedLoginTime string    `gorm:"type:varchar(8);not null"                       json:"expected_login_time"`
	RegisteredAt      time.Time `gorm:"not null"                                       json:"registered_at"`
	BaseModel
}

// TableName 指定表名
func (PlanLog) TableName() string { return "plan_logs" }
