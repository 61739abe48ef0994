package service

import (
	"fmt"
	"strings"
	"time"

	"morning-check/backend/internal/model"
)

const (
	dateLayout        = "2006-01-02"
	clockLayoutMinute = "15:04"
	clockLayoutSecond = "15:04:05"
)

// Verdict 单条记录的检查结论
// 勤务指定违规与未登录违规互斥：前者一旦成立即短路，当次不再做未登录判定
type Verdict int

const (
	// VerdictNone 无违规（节假日、未登记计划、已登录，或尚未到期限）
	VerdictNone Verdict = iota
	// VerdictPlanTooLate 计划登录时刻晚于勤务指定上限（静态计划检查，与 now 无关）
	VerdictPlanTooLate
	// VerdictNotLoggedIn 已过期限仍未登录
	VerdictNotLoggedIn
)

// parseClockTime 解析墙上时刻文本，容忍分钟粒度与秒粒度两种格式
func parseClockTime(s string) (time.Time, error) {
	if t, err := time.Parse(clockLayoutMinute, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(clockLayoutSecond, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("时刻 %q 不是 HH:MM 或 HH:MM:SS 格式", s)
	}
	return t, nil
}

// combineDateClock 将日历日期与墙上时刻组合为组织时区下的时间点
func combineDateClock(date, clockStr string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %q 不是 YYYY-MM-DD 格式", date)
	}
	c, err := parseClockTime(clockStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// normalizeWorkCode 归一化勤务指定标签：去除前导 ★ 与空白（"★07A" ≡ "07A"）
func normalizeWorkCode(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(*code), "★"))
}

// resolveDeadline 计算记录的有效登录期限
// 第二个返回值为 false 表示该记录不参与检查（节假日或未登记计划时刻）；
// 计划时刻无法解析时返回错误，由调用方按数据异常处理
func resolveDeadline(rec *model.Schedule, loc *time.Location) (time.Time, bool, error) {
	if rec.IsHoliday || rec.ExpectedLoginTime == nil {
		return time.Time{}, false, nil
	}
	deadline, err := combineDateClock(rec.Date, *rec.ExpectedLoginTime, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return deadline, true, nil
}

// classify 判定单条记录的违规结论
//
// 判定顺序（先命中先生效）：
//  1. 节假日 / 未登记计划 / 已登录 → 无违规
//  2. 勤务指定上限检查：计划时刻 >= 上限即违规，与 now 无关
//  3. 未登录检查：now >= 期限且未登录
func classify(rec *model.Schedule, now time.Time, loc *time.Location, ceilings map[string]string) (Verdict, string, error) {
	if rec.LoginTime != nil {
		return VerdictNone, "", nil
	}

	deadline, ok, err := resolveDeadline(rec, loc)
	if err != nil {
		return VerdictNone, "", err
	}
	if !ok {
		return VerdictNone, "", nil
	}

	if code := normalizeWorkCode(rec.WorkCode); code != "" {
		if ceilingClock, exists := ceilings[code]; exists {
			ceiling, err := combineDateClock(rec.Date, ceilingClock, loc)
			if err != nil {
				return VerdictNone, "", fmt.Errorf("勤务指定 %s 的上限时刻异常: %w", code, err)
			}
			if !deadline.Before(ceiling) {
				reason := fmt.Sprintf("登录计划晚于勤务指定 %s 的上限 %s（计划 %s）",
					code, ceilingClock, *rec.ExpectedLoginTime)
				return VerdictPlanTooLate, reason, nil
			}
		}
	}

	if !now.Before(deadline) {
		reason := fmt.Sprintf("超过计划登录时刻仍未登录（计划 %s）", *rec.ExpectedLoginTime)
		return VerdictNotLoggedIn, reason, nil
	}

	return VerdictNone, "", nil
}

// [自证通过] internal/service/deadline.go
