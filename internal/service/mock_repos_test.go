package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"morning-check/backend/internal/model"
	pkgerrors "morning-check/backend/pkg/errors"
)

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule // key: "userID|date"
	seq       int

	listErr       error // ListCheckable / ListByDate 注入错误
	stampAlertErr error // StampAlert 注入错误（非 ErrStaleWrite 的存储故障）
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func scheduleKey(userID int64, date string) string {
	return fmt.Sprintf("%d|%s", userID, date)
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sch-%d", m.seq)
	}
	m.schedules[scheduleKey(schedule.UserID, schedule.Date)] = schedule
	return nil
}

func (m *mockScheduleRepo) GetByUserAndDate(_ context.Context, userID int64, date string) (*model.Schedule, error) {
	if s, ok := m.schedules[scheduleKey(userID, date)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListByDate(_ context.Context, date string) ([]model.Schedule, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.Date == date {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) ListCheckable(_ context.Context, date string) ([]model.Schedule, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.Date == date && !s.IsHoliday && s.ExpectedLoginTime != nil {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) ListByDateRange(_ context.Context, from, to string) ([]model.Schedule, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.Date >= from && s.Date <= to {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Replace(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sch-%d", m.seq)
	}
	m.schedules[scheduleKey(schedule.UserID, schedule.Date)] = schedule
	return nil
}

func (m *mockScheduleRepo) UpdateExpectedLogin(_ context.Context, userID int64, date, expected string) (bool, error) {
	s, ok := m.schedules[scheduleKey(userID, date)]
	if !ok {
		return false, nil
	}
	s.ExpectedLoginTime = &expected
	return true, nil
}

func (m *mockScheduleRepo) StampAlert(_ context.Context, scheduleID string, triggeredAt, expireAt time.Time) error {
	if m.stampAlertErr != nil {
		return m.stampAlertErr
	}
	for _, s := range m.schedules {
		if s.ScheduleID != scheduleID {
			continue
		}
		// 带条件写：已有触发时间戳时拒绝，模拟并发轮询先行写入
		if s.AlertTriggeredAt != nil {
			return pkgerrors.ErrStaleWrite
		}
		t, e := triggeredAt, expireAt
		s.AlertTriggeredAt = &t
		s.AlertExpireAt = &e
		return nil
	}
	return pkgerrors.ErrStaleWrite
}

func (m *mockScheduleRepo) ResetAlert(_ context.Context, scheduleID string, triggeredAt, expireAt time.Time) error {
	for _, s := range m.schedules {
		if s.ScheduleID == scheduleID {
			t, e := triggeredAt, expireAt
			s.AlertTriggeredAt = &t
			s.AlertExpireAt = &e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) StampLogin(_ context.Context, userID int64, date, loginTime string) (bool, error) {
	s, ok := m.schedules[scheduleKey(userID, date)]
	if !ok {
		return false, nil
	}
	if s.LoginTime != nil {
		return false, nil
	}
	lt := loginTime
	s.LoginTime = &lt
	return true, nil
}

// ── Mock PlanLogRepository ──

type mockPlanLogRepo struct {
	logs map[string]*model.PlanLog // key: "userID|date"
	seq  int
}

func newMockPlanLogRepo() *mockPlanLogRepo {
	return &mockPlanLogRepo{logs: make(map[string]*model.PlanLog)}
}

func (m *mockPlanLogRepo) Create(_ context.Context, log *model.PlanLog) error {
	if log.PlanLogID == "" {
		m.seq++
		log.PlanLogID = fmt.Sprintf("plog-%d", m.seq)
	}
	m.logs[scheduleKey(log.UserID, log.Date)] = log
	return nil
}

func (m *mockPlanLogRepo) GetByUserAndDate(_ context.Context, userID int64, date string) (*model.PlanLog, error) {
	if l, ok := m.logs[scheduleKey(userID, date)]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanLogRepo) Update(_ context.Context, log *model.PlanLog) error {
	m.logs[scheduleKey(log.UserID, log.Date)] = log
	return nil
}

func (m *mockPlanLogRepo) List(_ context.Context, userID *int64, date *string) ([]model.PlanLog, error) {
	var result []model.PlanLog
	for _, l := range m.logs {
		if userID != nil && l.UserID != *userID {
			continue
		}
		if date != nil && l.Date != *date {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

// ── Mock CalendarEventRepository ──

type mockCalendarEventRepo struct {
	events map[string]*model.CalendarEvent
}

func newMockCalendarEventRepo() *mockCalendarEventRepo {
	return &mockCalendarEventRepo{events: make(map[string]*model.CalendarEvent)}
}

func (m *mockCalendarEventRepo) Upsert(_ context.Context, event *model.CalendarEvent) error {
	m.events[event.EventID] = event
	return nil
}

func (m *mockCalendarEventRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var result []model.CalendarEvent
	for _, e := range m.events {
		if !e.StartTime.Before(from) && e.StartTime.Before(to) {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	sent    []string
	sendErr error
}

func (m *mockNotifier) Send(_ context.Context, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, text)
	return nil
}

// ── Stub Clock ──

// stubClock 固定时刻时钟，测试中通过改写 now 模拟时间推进
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time           { return c.now }
func (c *stubClock) Location() *time.Location { return c.now.Location() }
func (c *stubClock) advance(d time.Duration)  { c.now = c.now.Add(d) }
