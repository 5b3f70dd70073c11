package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"Tempus/Attendance"
	"Tempus/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportController produces attendance exports for administrators
type ReportController struct {
	DB      *gorm.DB
	Service *Attendance.Service
}

// NewReportController creates a new ReportController
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, Service: Attendance.NewService(db)}
}

// ExportAttendance writes the records of a date window into an xlsx
// workbook and streams it back as an attachment.
func (r *ReportController) ExportAttendance(ctx *fiber.Ctx) error {
	start, end, err := parseDateWindow(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Dates must use the YYYY-MM-DD format",
		})
	}
	userID, err := parseUserFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	records, err := r.Service.GetAttendanceByDateRange(start, end, userID)
	if err != nil {
		return domainError(ctx, err)
	}

	usernames := r.usernamesFor(records)

	buffer, err := buildAttendanceWorkbook(records, usernames)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate report",
		})
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(buffer.Bytes())
}

// usernamesFor resolves the user IDs appearing in the export in one
// query.
func (r *ReportController) usernamesFor(records []Models.AttendanceRecord) map[uint]string {
	ids := make([]uint, 0, len(records))
	seen := make(map[uint]bool)
	for _, record := range records {
		if !seen[record.UserID] {
			seen[record.UserID] = true
			ids = append(ids, record.UserID)
		}
	}

	usernames := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return usernames
	}
	var users []Models.User
	if err := r.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return usernames
	}
	for _, user := range users {
		usernames[user.ID] = user.Username
	}
	return usernames
}

func buildAttendanceWorkbook(records []Models.AttendanceRecord, usernames map[uint]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "User ID", "Username", "Work Date", "Check In", "Check Out",
		"Total Hours", "Status", "Notes",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, record := range records {
		row := rowIndex + 2

		checkOut := ""
		if record.CheckOutTime != nil {
			checkOut = record.CheckOutTime.Format("2006-01-02 15:04:05")
		}
		totalHours := ""
		if record.TotalHours != nil {
			totalHours = fmt.Sprintf("%.2f", *record.TotalHours)
		}
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}

		values := []interface{}{
			record.ID,
			record.UserID,
			usernames[record.UserID],
			time.Time(record.WorkDate).Format("2006-01-02"),
			record.CheckInTime.Format("2006-01-02 15:04:05"),
			checkOut,
			totalHours,
			record.Status,
			notes,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 18)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
