package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"morning-check/backend/config"
	"morning-check/backend/internal/repository"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:evt-001@example.com
DTSTART:20250610T090000
DTEND:20250610T100000
SUMMARY:全体朝会
DESCRIPTION:月例
LAST-MODIFIED:20250601T000000Z
END:VEVENT
BEGIN:VEVENT
UID:evt-002@example.com
DTSTART:20251001T090000
SUMMARY:窗口外事件
END:VEVENT
BEGIN:VEVENT
UID:evt-003@example.com
DTSTART:20250615T140000
SUMMARY:无结束时间
END:VEVENT
END:VCALENDAR
`

func newCalendarFixture(feeds []config.CalendarFeed) (CalendarService, *mockCalendarEventRepo, *stubClock) {
	eventRepo := newMockCalendarEventRepo()
	repo := &repository.Repository{
		Schedule:      newMockScheduleRepo(),
		PlanLog:       newMockPlanLogRepo(),
		CalendarEvent: eventRepo,
	}
	cfg := &config.CalendarConfig{SyncWindowDays: 45, Feeds: feeds}
	clk := &stubClock{now: at("2025-06-02", 7, 35, 0)}
	return NewCalendarService(cfg, repo, clk, zap.NewNop()), eventRepo, clk
}

func TestParseFeedEvents_WindowAndFields(t *testing.T) {
	clk := &stubClock{now: at("2025-06-02", 7, 35, 0)}
	feed := config.CalendarFeed{URL: "https://example.com/cal.ics", GroupName: "本部"}
	from := clk.now
	to := from.AddDate(0, 0, 45)

	events, err := parseFeedEvents(strings.NewReader(sampleICS), feed, from, to, clk)
	if err != nil {
		t.Fatalf("期望解析成功，实际 %v", err)
	}
	// 窗口外的 evt-002 被过滤
	if len(events) != 2 {
		t.Fatalf("期望窗口内 2 条事件，实际 %d", len(events))
	}

	byID := map[string]int{}
	for i, e := range events {
		byID[e.EventID] = i
	}

	idx, ok := byID["evt-001@example.com"]
	if !ok {
		t.Fatal("缺少 evt-001")
	}
	e := events[idx]
	if e.Title != "全体朝会" || e.Description != "月例" {
		t.Errorf("事件字段不符: %+v", e)
	}
	if e.GroupName != "本部" || e.FeedURL != feed.URL {
		t.Errorf("订阅源字段不符: %+v", e)
	}
	if !e.StartTime.Equal(at("2025-06-10", 9, 0, 0)) || !e.EndTime.Equal(at("2025-06-10", 10, 0, 0)) {
		t.Errorf("事件时间不符: start=%v end=%v", e.StartTime, e.EndTime)
	}
	if e.LastModified == nil {
		t.Error("LAST-MODIFIED 应被解析")
	}

	// 缺少 DTEND 的事件按开始 + 1 小时兜底
	idx, ok = byID["evt-003@example.com"]
	if !ok {
		t.Fatal("缺少 evt-003")
	}
	e = events[idx]
	if !e.EndTime.Equal(e.StartTime.Add(time.Hour)) {
		t.Errorf("无结束时间的事件应兜底为开始 + 1 小时，实际 %v", e.EndTime)
	}
}

func TestParseFeedEvents_BadContent(t *testing.T) {
	clk := &stubClock{now: at("2025-06-02", 7, 35, 0)}
	feed := config.CalendarFeed{URL: "https://example.com/cal.ics"}

	_, err := parseFeedEvents(strings.NewReader("<html>not a calendar</html>"), feed, clk.now, clk.now.AddDate(0, 0, 45), clk)
	if err == nil {
		t.Fatal("非 ICS 内容应返回解析错误")
	}
}

func TestParseICSTimeValue(t *testing.T) {
	loc := testLoc

	// UTC 形态换算到组织时区
	got, err := parseICSTimeValue("20250610T000000Z", loc)
	if err != nil {
		t.Fatalf("UTC 形态应可解析: %v", err)
	}
	if !got.Equal(at("2025-06-10", 9, 0, 0)) {
		t.Errorf("UTC 换算不符: %v", got)
	}

	// 本地形态
	got, err = parseICSTimeValue("20250610T090000", loc)
	if err != nil {
		t.Fatalf("本地形态应可解析: %v", err)
	}
	if !got.Equal(at("2025-06-10", 9, 0, 0)) {
		t.Errorf("本地形态不符: %v", got)
	}

	// 纯日期形态（全天事件）
	got, err = parseICSTimeValue("20250610", loc)
	if err != nil {
		t.Fatalf("纯日期形态应可解析: %v", err)
	}
	if !got.Equal(at("2025-06-10", 0, 0, 0)) {
		t.Errorf("纯日期形态不符: %v", got)
	}

	if _, err := parseICSTimeValue("来月10日", loc); err == nil {
		t.Error("非法形态应返回错误")
	}
}

func TestCalendarSync_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	svc, repo, _ := newCalendarFixture([]config.CalendarFeed{{URL: srv.URL, GroupName: "本部"}})

	result, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("期望同步成功，实际 %v", err)
	}
	if result.SyncedCount != 2 {
		t.Errorf("期望同步 2 条事件，实际 %d", result.SyncedCount)
	}
	if len(result.FailedFeeds) != 0 {
		t.Errorf("不应有失败订阅源，实际 %v", result.FailedFeeds)
	}
	if len(repo.events) != 2 {
		t.Errorf("期望落库 2 条事件，实际 %d", len(repo.events))
	}
}

func TestCalendarSync_FeedFailureIsolated(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleICS))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	svc, _, _ := newCalendarFixture([]config.CalendarFeed{
		{URL: bad.URL, GroupName: "分部"},
		{URL: good.URL, GroupName: "本部"},
	})

	// 单个订阅源失败不影响其余
	result, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("期望同步成功，实际 %v", err)
	}
	if result.SyncedCount != 2 {
		t.Errorf("正常订阅源仍应同步 2 条，实际 %d", result.SyncedCount)
	}
	if len(result.FailedFeeds) != 1 || result.FailedFeeds[0] != bad.URL {
		t.Errorf("失败订阅源应被记录，实际 %v", result.FailedFeeds)
	}
}

func TestCalendarSync_NoFeeds(t *testing.T) {
	svc, _, _ := newCalendarFixture(nil)

	if _, err := svc.Sync(context.Background()); !errors.Is(err, ErrNoCalendarFeeds) {
		t.Errorf("期望 ErrNoCalendarFeeds，实际 %v", err)
	}
}

func TestCalendarListEvents_InvalidDate(t *testing.T) {
	svc, _, _ := newCalendarFixture(nil)

	if _, err := svc.ListEvents(context.Background(), "June 10", "2025-06-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际 %v", err)
	}
}
