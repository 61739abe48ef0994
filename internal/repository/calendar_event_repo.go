package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"morning-check/backend/internal/model"
)

// CalendarEventRepository 日历事件数据访问接口
type CalendarEventRepository interface {
	// Upsert 按事件 UID 插入或覆盖
	Upsert(ctx context.Context, event *model.CalendarEvent) error
	ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
}

type calendarEventRepo struct {
	db *gorm.DB
}

// NewCalendarEventRepo 创建 CalendarEventRepository 实现
func NewCalendarEventRepo(db *gorm.DB) CalendarEventRepository {
	return &calendarEventRepo{db: db}
}

func (r *calendarEventRepo) Upsert(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"feed_url", "group_name", "title", "description",
				"start_time", "end_time", "last_modified", "synced_at", "updated_at",
			}),
		}).
		Create(event).Error
}

func (r *calendarEventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&events).Error
	return events, err
}
