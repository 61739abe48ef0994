package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"morning-check/backend/internal/model"
	"morning-check/backend/internal/repository"
)

func newExportFixture() (ExportService, *mockScheduleRepo) {
	scheduleRepo := newMockScheduleRepo()
	repo := &repository.Repository{
		Schedule:      scheduleRepo,
		PlanLog:       newMockPlanLogRepo(),
		CalendarEvent: newMockCalendarEventRepo(),
	}
	return NewExportService(repo, zap.NewNop()), scheduleRepo
}

func TestExportAttendance_Success(t *testing.T) {
	svc, repo := newExportFixture()

	triggered := at("2025-06-02", 7, 35, 0)
	repo.Create(context.Background(), &model.Schedule{
		UserID:            42,
		Username:          "山田",
		Date:              "2025-06-02",
		ExpectedLoginTime: strp("07:30"),
		WorkCode:          strp("07A"),
		AlertTriggeredAt:  &triggered,
	})
	repo.Create(context.Background(), &model.Schedule{
		UserID:    43,
		Username:  "佐藤",
		Date:      "2025-06-03",
		LoginTime: strp("08:55:12"),
		IsHoliday: true,
	})

	buf, filename, err := svc.ExportAttendance(context.Background(), "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("期望导出成功，实际 %v", err)
	}
	if filename != "attendance_2025-06-01_2025-06-30.xlsx" {
		t.Errorf("文件名不符: %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	const sheetName = "出勤记录"
	title, err := f.GetCellValue(sheetName, "A1")
	if err != nil {
		t.Fatalf("读取标题失败: %v", err)
	}
	if title != "出勤记录 2025-06-01 ~ 2025-06-30" {
		t.Errorf("标题不符: %q", title)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("读取行失败: %v", err)
	}
	// 标题 + 表头 + 2 条数据
	if len(rows) != 4 {
		t.Fatalf("期望 4 行，实际 %d 行", len(rows))
	}
	if rows[1][0] != "日期" || rows[1][2] != "姓名" {
		t.Errorf("表头不符: %v", rows[1])
	}

	// 数据行按查询顺序填充，内容覆盖关键列
	found := false
	for _, row := range rows[2:] {
		if len(row) > 2 && row[2] == "山田" {
			found = true
			if row[3] != "07:30" || row[6] != "07A" {
				t.Errorf("山田的数据行不符: %v", row)
			}
			if row[7] != triggered.Format("2006-01-02 15:04:05") {
				t.Errorf("告警触发时间不符: %q", row[7])
			}
		}
	}
	if !found {
		t.Error("数据行缺少用户山田")
	}
}

func TestExportAttendance_HolidayMark(t *testing.T) {
	svc, repo := newExportFixture()
	repo.Create(context.Background(), &model.Schedule{
		UserID: 43, Username: "佐藤", Date: "2025-06-03", IsHoliday: true,
	})

	buf, _, err := svc.ExportAttendance(context.Background(), "2025-06-03", "2025-06-03")
	if err != nil {
		t.Fatalf("期望导出成功，实际 %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	mark, _ := f.GetCellValue("出勤记录", "F3")
	if mark != "○" {
		t.Errorf("节假日标记不符: %q", mark)
	}
}

func TestExportAttendance_InvalidRange(t *testing.T) {
	svc, _ := newExportFixture()

	if _, _, err := svc.ExportAttendance(context.Background(), "06-01", "2025-06-30"); !errors.Is(err, ErrExportInvalidRange) {
		t.Errorf("非法日期应返回 ErrExportInvalidRange，实际 %v", err)
	}
	if _, _, err := svc.ExportAttendance(context.Background(), "2025-06-30", "2025-06-01"); !errors.Is(err, ErrExportInvalidRange) {
		t.Errorf("倒序范围应返回 ErrExportInvalidRange，实际 %v", err)
	}
}

func TestExportAttendance_NoRecords(t *testing.T) {
	svc, _ := newExportFixture()

	if _, _, err := svc.ExportAttendance(context.Background(), "2025-06-01", "2025-06-30"); !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("空范围应返回 ErrExportNoRecords，实际 %v", err)
	}
}

// 告警时间戳为空的记录导出为空单元格
func TestTimeOrEmpty(t *testing.T) {
	if got := timeOrEmpty(nil); got != "" {
		t.Errorf("nil 应导出为空串，实际 %q", got)
	}
	ts := time.Date(2025, 6, 2, 7, 35, 0, 0, testLoc)
	if got := timeOrEmpty(&ts); got != "2025-06-02 07:35:00" {
		t.Errorf("时间格式不符: %q", got)
	}
}
