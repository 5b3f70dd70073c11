package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attendance statuses. StatusAbsent is reserved for a future
// absence-marking job; no current flow produces it.
const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusAbsent     = "absent"
)

// AttendanceRecord is one user's attendance for one work date.
// The composite unique index backs the one-record-per-user-per-day
// invariant; a duplicate insert from a racing check-in fails at the
// database instead of producing a second row.
type AttendanceRecord struct {
	gorm.Model
	UserID       uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_attendance_user_work_date"`
	WorkDate     datatypes.Date `json:"work_date" gorm:"not null;uniqueIndex:idx_attendance_user_work_date"`
	CheckInTime  time.Time      `json:"check_in_time" gorm:"not null"`
	CheckOutTime *time.Time     `json:"check_out_time"`
	TotalHours   *float64       `json:"total_hours"`
	Status       string         `json:"status" gorm:"not null;default:checked_in;index"`
	Notes        *string        `json:"notes"`
}

// AttendanceStatistics aggregates a date window, optionally scoped to
// one user. Every field is always present, zero when nothing matched.
type AttendanceStatistics struct {
	TotalRecords    int64   `json:"totalRecords"`
	TotalHours      float64 `json:"totalHours"`
	AverageHours    float64 `json:"averageHours"`
	CheckedInCount  int64   `json:"checkedInCount"`
	CheckedOutCount int64   `json:"checkedOutCount"`
	AbsentCount     int64   `json:"absentCount"`
}
