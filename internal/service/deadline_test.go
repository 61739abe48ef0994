package service

import (
	"testing"
	"time"

	"morning-check/backend/internal/model"
)

var testLoc = time.FixedZone("UTC+9", 9*3600)

var testCeilings = map[string]string{
	"07A": "07:00",
	"11A": "11:00",
}

func strp(s string) *string { return &s }

func at(date string, hour, min, sec int) time.Time {
	d, err := time.ParseInLocation(dateLayout, date, testLoc)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, sec, 0, testLoc)
}

func testSchedule(expected string) *model.Schedule {
	return &model.Schedule{
		ScheduleID:        "sch-1",
		UserID:            42,
		Username:          "山田",
		Date:              "2025-06-02",
		ExpectedLoginTime: strp(expected),
	}
}

func TestClassify_LoggedIn_NoViolation(t *testing.T) {
	rec := testSchedule("07:30")
	rec.LoginTime = strp("07:10:23")

	// 已登录的记录即使过了期限也不再违规
	verdict, _, err := classify(rec, at("2025-06-02", 8, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNone {
		t.Errorf("期望 VerdictNone，实际 %v", verdict)
	}
}

func TestClassify_Holiday_Skipped(t *testing.T) {
	rec := testSchedule("07:30")
	rec.IsHoliday = true

	verdict, _, err := classify(rec, at("2025-06-02", 8, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNone {
		t.Errorf("节假日记录不应违规，实际 %v", verdict)
	}
}

func TestClassify_NoExpectedLogin_Skipped(t *testing.T) {
	rec := testSchedule("07:30")
	rec.ExpectedLoginTime = nil

	verdict, _, err := classify(rec, at("2025-06-02", 8, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNone {
		t.Errorf("未登记计划的记录不应违规，实际 %v", verdict)
	}
}

func TestClassify_BeforeDeadline_NoViolation(t *testing.T) {
	rec := testSchedule("09:00")

	// 07:35 检查 09:00 的计划：尚未到期限
	verdict, _, err := classify(rec, at("2025-06-02", 7, 35, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNone {
		t.Errorf("未到期限不应违规，实际 %v", verdict)
	}
}

func TestClassify_AtDeadline_NotLoggedIn(t *testing.T) {
	rec := testSchedule("07:30")

	// now == 期限时刻即违规（>= 语义）
	verdict, reason, err := classify(rec, at("2025-06-02", 7, 30, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNotLoggedIn {
		t.Fatalf("期望 VerdictNotLoggedIn，实际 %v", verdict)
	}
	if reason != "超过计划登录时刻仍未登录（计划 07:30）" {
		t.Errorf("违规原因不符: %q", reason)
	}
}

func TestClassify_SecondGranularityDeadline(t *testing.T) {
	rec := testSchedule("07:30:30")

	if verdict, _, _ := classify(rec, at("2025-06-02", 7, 30, 29), testLoc, testCeilings); verdict != VerdictNone {
		t.Errorf("07:30:29 检查 07:30:30 的计划不应违规，实际 %v", verdict)
	}
	if verdict, _, _ := classify(rec, at("2025-06-02", 7, 30, 30), testLoc, testCeilings); verdict != VerdictNotLoggedIn {
		t.Errorf("07:30:30 检查 07:30:30 的计划应违规，实际 %v", verdict)
	}
}

func TestClassify_WorkCodePlanTooLate(t *testing.T) {
	rec := testSchedule("07:30")
	rec.WorkCode = strp("07A")

	// 勤务指定检查与 now 无关：即使还没到 07:30 也成立
	verdict, reason, err := classify(rec, at("2025-06-02", 6, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictPlanTooLate {
		t.Fatalf("期望 VerdictPlanTooLate，实际 %v", verdict)
	}
	if reason != "登录计划晚于勤务指定 07A 的上限 07:00（计划 07:30）" {
		t.Errorf("违规原因不符: %q", reason)
	}
}

func TestClassify_WorkCodeStarPrefix(t *testing.T) {
	rec := testSchedule("07:30")
	rec.WorkCode = strp("★07A")

	// "★07A" 与 "07A" 等价
	verdict, _, err := classify(rec, at("2025-06-02", 6, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictPlanTooLate {
		t.Errorf("期望 VerdictPlanTooLate，实际 %v", verdict)
	}
}

func TestClassify_WorkCodeAtCeiling(t *testing.T) {
	rec := testSchedule("07:00")
	rec.WorkCode = strp("07A")

	// 计划 == 上限也算违规（>= 语义）
	verdict, _, err := classify(rec, at("2025-06-02", 6, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictPlanTooLate {
		t.Errorf("期望 VerdictPlanTooLate，实际 %v", verdict)
	}
}

func TestClassify_WorkCodeBelowCeiling(t *testing.T) {
	rec := testSchedule("06:50")
	rec.WorkCode = strp("07A")

	// 计划早于上限：勤务指定检查通过，转入未登录检查
	if verdict, _, _ := classify(rec, at("2025-06-02", 6, 0, 0), testLoc, testCeilings); verdict != VerdictNone {
		t.Errorf("6:00 时不应违规，实际 %v", verdict)
	}
	if verdict, _, _ := classify(rec, at("2025-06-02", 7, 0, 0), testLoc, testCeilings); verdict != VerdictNotLoggedIn {
		t.Errorf("7:00 时应为未登录违规，实际 %v", verdict)
	}
}

func TestClassify_UnknownWorkCode_Ignored(t *testing.T) {
	rec := testSchedule("07:30")
	rec.WorkCode = strp("99Z")

	verdict, _, err := classify(rec, at("2025-06-02", 6, 0, 0), testLoc, testCeilings)
	if err != nil {
		t.Fatalf("期望无错误，实际 %v", err)
	}
	if verdict != VerdictNone {
		t.Errorf("未知勤务指定不应触发上限检查，实际 %v", verdict)
	}
}

func TestClassify_BadExpectedTime_Error(t *testing.T) {
	rec := testSchedule("7時30分")

	_, _, err := classify(rec, at("2025-06-02", 8, 0, 0), testLoc, testCeilings)
	if err == nil {
		t.Fatal("期望返回数据异常错误")
	}
}

func TestParseClockTime(t *testing.T) {
	if _, err := parseClockTime("07:30"); err != nil {
		t.Errorf("HH:MM 格式应可解析: %v", err)
	}
	if _, err := parseClockTime("07:30:15"); err != nil {
		t.Errorf("HH:MM:SS 格式应可解析: %v", err)
	}
	if _, err := parseClockTime("0730"); err == nil {
		t.Error("非法格式应返回错误")
	}
}

func TestNormalizeWorkCode(t *testing.T) {
	cases := []struct {
		in   *string
		want string
	}{
		{nil, ""},
		{strp("07A"), "07A"},
		{strp("★07A"), "07A"},
		{strp(" ★11A "), "11A"},
		{strp("  "), ""},
	}
	for _, c := range cases {
		if got := normalizeWorkCode(c.in); got != c.want {
			t.Errorf("normalizeWorkCode(%v) = %q，期望 %q", c.in, got, c.want)
		}
	}
}
