package Attendance

import (
	"math"
	"strings"
	"time"

	"Tempus/Models"

	"gorm.io/gorm"
)

// Service enforces the check-in/check-out state machine on top of the
// Store. It is stateless between calls; the surrounding request
// runtime provides all concurrency.
type Service struct {
	Store *Store
}

func NewService(db *gorm.DB) *Service {
	return &Service{Store: NewStore(db)}
}

// Rounding is half-up away from zero throughout: total_hours at two
// decimals, averages at four.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// isDuplicateKey matches the unique-violation wording of the sqlite,
// postgres and mysql drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

// CheckIn creates today's record for the user. A second same-day call
// fails with ErrAlreadyCheckedIn, whether it loses to the existence
// check or to the unique index.
func (s *Service) CheckIn(userID uint, notes *string) (*Models.AttendanceRecord, error) {
	now := time.Now()
	today := DateOf(now)

	_, found, err := s.Store.FindByUserIDAndDate(userID, today)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrAlreadyCheckedIn
	}

	record := &Models.AttendanceRecord{
		UserID:      userID,
		WorkDate:    today,
		CheckInTime: now,
		Status:      Models.StatusCheckedIn,
		Notes:       notes,
	}
	if err := s.Store.Create(record); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return record, nil
}

// CheckOut closes today's record. Notes fall back to the ones supplied
// at check-in when the caller sends none.
func (s *Service) CheckOut(userID uint, notes *string) (*Models.AttendanceRecord, error) {
	record, found, err := s.Store.FindTodayByUserID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotCheckedIn
	}
	if record.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	now := time.Now()
	totalHours := round2(now.Sub(record.CheckInTime).Hours())

	finalNotes := notes
	if finalNotes == nil {
		finalNotes = record.Notes
	}

	fields := map[string]interface{}{
		"check_out_time": now,
		"total_hours":    totalHours,
		"status":         Models.StatusCheckedOut,
		"notes":          finalNotes,
	}
	rows, err := s.Store.Update(record.ID, fields)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Deleted concurrently between the lookup and the update.
		return nil, ErrRecordNotFound
	}

	updated, found, err := s.Store.FindByID(record.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return updated, nil
}

// GetTodayAttendance is a pure lookup; nil without error means the
// user has not checked in today.
func (s *Service) GetTodayAttendance(userID uint) (*Models.AttendanceRecord, error) {
	record, found, err := s.Store.FindTodayByUserID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return record, nil
}

func (s *Service) GetUserAttendance(userID uint, limit, offset int) ([]Models.AttendanceRecord, error) {
	return s.Store.FindByUserID(userID, limit, offset)
}

func (s *Service) GetAttendanceByDateRange(start, end time.Time, userID *uint) ([]Models.AttendanceRecord, error) {
	return s.Store.FindByDateRange(DateOf(start), DateOf(end), userID)
}

func (s *Service) GetAllAttendance(limit, offset int) ([]Models.AttendanceRecord, error) {
	return s.Store.FindAll(limit, offset)
}

func (s *Service) GetStatistics(start, end time.Time, userID *uint) (*Models.AttendanceStatistics, error) {
	stats, err := s.Store.GetStatistics(DateOf(start), DateOf(end), userID)
	if err != nil {
		return nil, err
	}
	stats.AverageHours = round4(stats.AverageHours)
	return stats, nil
}

// RecordUpdate carries the fields an administrator may change. Nil
// fields are left untouched.
type RecordUpdate struct {
	CheckOutTime *time.Time
	TotalHours   *float64
	Status       *string
	Notes        *string
}

// UpdateRecord applies an administrative partial update. The resulting
// status and check-out time must agree: checked_out requires a
// check-out time and checked_in forbids one.
func (s *Service) UpdateRecord(id uint, update RecordUpdate) (*Models.AttendanceRecord, error) {
	record, found, err := s.Store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}

	finalStatus := record.Status
	if update.Status != nil {
		finalStatus = *update.Status
	}
	finalCheckOut := record.CheckOutTime
	if update.CheckOutTime != nil {
		finalCheckOut = update.CheckOutTime
	}
	if finalStatus == Models.StatusCheckedOut && finalCheckOut == nil {
		return nil, ErrStatusMismatch
	}
	if finalStatus == Models.StatusCheckedIn && finalCheckOut != nil {
		return nil, ErrStatusMismatch
	}

	fields := map[string]interface{}{}
	if update.CheckOutTime != nil {
		fields["check_out_time"] = *update.CheckOutTime
	}
	if update.TotalHours != nil {
		fields["total_hours"] = round2(*update.TotalHours)
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}
	if len(fields) == 0 {
		return record, nil
	}

	rows, err := s.Store.Update(id, fields)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrRecordNotFound
	}

	updated, found, err := s.Store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	return updated, nil
}

func (s *Service) DeleteRecord(id uint) error {
	rows, err := s.Store.Delete(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DateOfString parses a YYYY-MM-DD query value into a local date.
func DateOfString(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}
