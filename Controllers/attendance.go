package Controllers

import (
	"errors"
	"strconv"
	"time"

	"Tempus/Attendance"
	"Tempus/Models"
	"Tempus/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AttendanceController handles the attendance API endpoints
type AttendanceController struct {
	Service *Attendance.Service
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{Service: Attendance.NewService(db)}
}

type NotesRequest struct {
	Notes *string `json:"notes"`
}

type RecordUpdateRequest struct {
	CheckOutTime *time.Time `json:"check_out_time"`
	TotalHours   *float64   `json:"total_hours"`
	Status       *string    `json:"status" validate:"omitempty,oneof=checked_in checked_out absent"`
	Notes        *string    `json:"notes"`
}

// domainError maps domain failures onto the response envelope. Storage
// errors become an opaque 500.
func domainError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Attendance.ErrRecordNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, Attendance.ErrAlreadyCheckedIn),
		errors.Is(err, Attendance.ErrNotCheckedIn),
		errors.Is(err, Attendance.ErrAlreadyCheckedOut),
		errors.Is(err, Attendance.ErrStatusMismatch):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}

// parseNotes tolerates an empty body; notes are optional everywhere.
// A non-empty body that fails to parse is the caller's error.
func parseNotes(ctx *fiber.Ctx) (*string, error) {
	if len(ctx.Body()) == 0 {
		return nil, nil
	}
	var input NotesRequest
	if err := ctx.BodyParser(&input); err != nil {
		return nil, err
	}
	return input.Notes, nil
}

// parseDateWindow reads startDate/endDate query values, defaulting to
// the trailing 30 days when both are omitted.
func parseDateWindow(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if value := ctx.Query("startDate"); value != "" {
		parsed, err := Attendance.DateOfString(value)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if value := ctx.Query("endDate"); value != "" {
		parsed, err := Attendance.DateOfString(value)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}
	return start, end, nil
}

func parseUserFilter(ctx *fiber.Ctx) (*uint, error) {
	value := ctx.Query("userId")
	if value == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id < 1 {
		return nil, errors.New("invalid userId")
	}
	userID := uint(id)
	return &userID, nil
}

// CheckIn opens today's attendance record for the caller.
func (a *AttendanceController) CheckIn(ctx *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(ctx)
	notes, err := parseNotes(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	record, err := a.Service.CheckIn(user.ID, notes)
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Checked in",
		"data":    record,
	})
}

// CheckOut closes today's attendance record for the caller.
func (a *AttendanceController) CheckOut(ctx *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(ctx)
	notes, err := parseNotes(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	record, err := a.Service.CheckOut(user.ID, notes)
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Checked out",
		"data":    record,
	})
}

// GetToday returns today's record, or null when not checked in.
func (a *AttendanceController) GetToday(ctx *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(ctx)
	record, err := a.Service.GetTodayAttendance(user.ID)
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// GetHistory returns the caller's paginated attendance history.
func (a *AttendanceController) GetHistory(ctx *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(ctx)
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	records, err := a.Service.GetUserAttendance(user.ID, limit, offset)
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}

// GetStatistics aggregates a date window, trailing 30 days by default.
func (a *AttendanceController) GetStatistics(ctx *fiber.Ctx) error {
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

	stats, err := a.Service.GetStatistics(start, end, userID)
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// GetAll returns every record, date-filtered when both bounds are
// given, paginated otherwise.
func (a *AttendanceController) GetAll(ctx *fiber.Ctx) error {
	userID, err := parseUserFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	hasStart := ctx.Query("startDate") != ""
	hasEnd := ctx.Query("endDate") != ""
	if hasStart != hasEnd {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "startDate and endDate must be supplied together",
		})
	}

	var records []Models.AttendanceRecord
	if hasStart && hasEnd {
		start, end, err := parseDateWindow(ctx)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Dates must use the YYYY-MM-DD format",
			})
		}
		records, err = a.Service.GetAttendanceByDateRange(start, end, userID)
		if err != nil {
			return domainError(ctx, err)
		}
	} else {
		limit := ctx.QueryInt("limit", 100)
		offset := ctx.QueryInt("offset", 0)
		records, err = a.Service.GetAllAttendance(limit, offset)
		if err != nil {
			return domainError(ctx, err)
		}
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}

// UpdateRecord applies an administrative partial update to a record.
func (a *AttendanceController) UpdateRecord(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid record ID",
		})
	}

	var input RecordUpdateRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	record, err := a.Service.UpdateRecord(uint(id), Attendance.RecordUpdate{
		CheckOutTime: input.CheckOutTime,
		TotalHours:   input.TotalHours,
		Status:       input.Status,
		Notes:        input.Notes,
	})
	if err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// DeleteRecord removes a record explicitly; nothing deletes records
// automatically.
func (a *AttendanceController) DeleteRecord(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid record ID",
		})
	}
	if err := a.Service.DeleteRecord(uint(id)); err != nil {
		return domainError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Attendance record deleted",
	})
}
