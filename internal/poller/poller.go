// Package poller 提供内置定时轮询：按 cron 表达式周期性执行登录检查。
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"morning-check/backend/config"
	"morning-check/backend/internal/service"
	"morning-check/backend/pkg/clock"
)

// runTimeout 单次检查的执行上限，防止慢查询拖垮后续轮询
const runTimeout = 5 * time.Minute

// Poller 定时轮询器，在组织时区下按 cron 表达式触发登录检查
type Poller struct {
	cron     *cron.Cron
	checkSvc service.CheckService
	logger   *zap.Logger
}

// New 创建 Poller 并注册检查任务
func New(cfg *config.PollConfig, checkSvc service.CheckService, clk clock.Clock, logger *zap.Logger) (*Poller, error) {
	c := cron.New(cron.WithLocation(clk.Location()))

	p := &Poller{
		cron:     c,
		checkSvc: checkSvc,
		logger:   logger,
	}

	if _, err := c.AddFunc(cfg.CronSpec, p.run); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Poller) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := p.checkSvc.RunCheck(ctx)
	if err != nil {
		// 已有检查在执行时跳过本轮，不视为故障
		if errors.Is(err, service.ErrCheckInProgress) {
			p.logger.Info("已有登录检查在执行，跳过本轮轮询")
			return
		}
		p.logger.Error("定时登录检查失败", zap.Error(err))
		return
	}

	p.logger.Info("定时登录检查完成",
		zap.Int("violations", len(result.MissedLogins)),
	)
}

// Start 启动轮询（异步，立即返回）
func (p *Poller) Start() {
	p.cron.Start()
	p.logger.Info("定时轮询已启动")
}

// Stop 停止轮询，等待正在执行的任务结束
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("定时轮询已停止")
}
