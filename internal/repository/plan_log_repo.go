package repository

import (
	"context"

	"gorm.io/gorm"

	"morning-check/backend/internal/model"
)

// PlanLogRepository 出勤计划登记日志数据访问接口
type PlanLogRepository interface {
	Create(ctx context.Context, log *model.PlanLog) error
	GetByUserAndDate(ctx context.Context, userID int64, date string) (*model.PlanLog, error)
	Update(ctx context.Context, log *model.PlanLog) error
	// List 按可选的 userID / date 过滤；nil 表示不过滤
	List(ctx context.Context, userID *int64, date *string) ([]model.PlanLog, error)
}

type planLogRepo struct {
	db *gorm.DB
}

// NewPlanLogRepo 创建 PlanLogRepository 实现
func NewPlanLogRepo(db *gorm.DB) PlanLogRepository {
	return &planLogRepo{db: db}
}

func (r *planLogRepo) Create(ctx context.Context, log *model.PlanLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *planLogRepo) GetByUserAndDate(ctx context.Context, userID int64, date string) (*model.PlanLog, error) {
	var log model.PlanLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *planLogRepo) Update(ctx context.Context, log *model.PlanLog) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanLog{}).
		Where("plan_log_id = ?", log.PlanLogID).
		Updates(map[string]interface{}{
			"expected_login_time": log.ExpectedLoginTime,
			"registered_at":       log.RegisteredAt,
		}).Error
}

func (r *planLogRepo) List(ctx context.Context, userID *int64, date *string) ([]model.PlanLog, error) {
	query := r.db.WithContext(ctx).Model(&model.PlanLog{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if date != nil {
		query = query.Where("date = ?", *date)
	}

	var logs []model.PlanLog
	err := query.Order("date, user_id").Find(&logs).Error
	return logs, err
}
