package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"morning-check/backend/internal/dto"
	"morning-check/backend/internal/model"
	"morning-check/backend/internal/repository"
	"morning-check/backend/pkg/clock"
)

// PlanLogService 出勤计划登记日志业务接口
type PlanLogService interface {
	// Upsert 登记或更新计划日志；第二个返回值表示是否为新建
	Upsert(ctx context.Context, req *dto.PlanLogRequest) (*dto.PlanLogResponse, bool, error)
	List(ctx context.Context, userID *int64, date *string) ([]dto.PlanLogResponse, error)
}

type planLogService struct {
	repo   *repository.Repository
	clk    clock.Clock
	logger *zap.Logger
}

// NewPlanLogService 创建 PlanLogService 实例
func NewPlanLogService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) PlanLogService {
	return &planLogService{repo: repo, clk: clk, logger: logger}
}

func (s *planLogService) Upsert(ctx context.Context, req *dto.PlanLogRequest) (*dto.PlanLogResponse, bool, error) {
	if err := validateDate(req.Date); err != nil {
		return nil, false, err
	}
	if _, err := parseClockTime(req.ExpectedLoginTime); err != nil {
		return nil, false, ErrInvalidClockTime
	}

	now := s.clk.Now()

	existing, err := s.repo.PlanLog.GetByUserAndDate(ctx, req.UserID, req.Date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询计划日志失败",
			zap.Int64("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return nil, false, err
	}

	if existing != nil {
		existing.ExpectedLoginTime = req.ExpectedLoginTime
		existing.RegisteredAt = now
		if err := s.repo.PlanLog.Update(ctx, existing); err != nil {
			s.logger.Error("更新计划日志失败",
				zap.Int64("user_id", req.UserID),
				zap.String("date", req.Date),
				zap.Error(err),
			)
			return nil, false, err
		}
		resp := toPlanLogResponse(existing)
		return &resp, false, nil
	}

	log := &model.PlanLog{
		UserID:            req.UserID,
		Date:              req.Date,
		ExpectedLoginTime: req.ExpectedLoginTime,
		RegisteredAt:      now,
	}
	if err := s.repo.PlanLog.Create(ctx, log); err != nil {
		s.logger.Error("保存计划日志失败",
			zap.Int64("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return nil, false, err
	}
	resp := toPlanLogResponse(log)
	return &resp, true, nil
}

func (s *planLogService) List(ctx context.Context, userID *int64, date *string) ([]dto.PlanLogResponse, error) {
	if date != nil {
		if err := validateDate(*date); err != nil {
			return nil, err
		}
	}

	logs, err := s.repo.PlanLog.List(ctx, userID, date)
	if err != nil {
		s.logger.Error("查询计划日志失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlanLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toPlanLogResponse(&logs[i]))
	}
	return result, nil
}

func toPlanLogResponse(log *model.PlanLog) dto.PlanLogResponse {
	return dto.PlanLogResponse{
		PlanLogID:         log.PlanLogID,
		UserID:            log.UserID,
		Date:              log.Date,
		ExpectedLoginTime: log.ExpectedLoginTime,
		RegisteredAt:      log.RegisteredAt.Format(time.RFC3339),
	}
}
