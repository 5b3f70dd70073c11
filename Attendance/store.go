package Attendance

import (
	"errors"
	"time"

	"Tempus/Models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the persistence contract for attendance records. Reads
// report "not found" through the found flag or an empty slice, never
// through an error.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// DateOf truncates a timestamp to its calendar date in the timestamp's
// own location.
func DateOf(t time.Time) datatypes.Date {
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
}

func (s *Store) Create(record *Models.AttendanceRecord) error {
	return s.DB.Create(record).Error
}

func (s *Store) FindByID(id uint) (*Models.AttendanceRecord, bool, error) {
	var record Models.AttendanceRecord
	err := s.DB.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// FindByUserID returns a user's records, most recent work date first,
// then most recent check-in. limit <= 0 means no limit.
func (s *Store) FindByUserID(userID uint, limit, offset int) ([]Models.AttendanceRecord, error) {
	records := []Models.AttendanceRecord{}
	query := s.DB.Where("user_id = ?", userID).
		Order("work_date DESC").
		Order("check_in_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&records).Error
	return records, err
}

func (s *Store) FindByUserIDAndDate(userID uint, workDate datatypes.Date) (*Models.AttendanceRecord, bool, error) {
	var record Models.AttendanceRecord
	err := s.DB.Where("user_id = ? AND work_date = ?", userID, workDate).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (s *Store) FindTodayByUserID(userID uint) (*Models.AttendanceRecord, bool, error) {
	return s.FindByUserIDAndDate(userID, DateOf(time.Now()))
}

func (s *Store) FindAll(limit, offset int) ([]Models.AttendanceRecord, error) {
	records := []Models.AttendanceRecord{}
	query := s.DB.Order("work_date DESC").Order("check_in_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&records).Error
	return records, err
}

// FindByDateRange returns records with work_date inside the inclusive
// [start, end] window, optionally scoped to one user.
func (s *Store) FindByDateRange(start, end datatypes.Date, userID *uint) ([]Models.AttendanceRecord, error) {
	records := []Models.AttendanceRecord{}
	query := s.DB.Where("work_date >= ? AND work_date <= ?", start, end)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Order("work_date DESC").Order("check_in_time DESC").Find(&records).Error
	return records, err
}

// Update applies a partial update and reports how many rows changed.
// Zero rows means the record vanished under the caller.
func (s *Store) Update(id uint, fields map[string]interface{}) (int64, error) {
	result := s.DB.Model(&Models.AttendanceRecord{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// Delete removes a record permanently. A soft-deleted row would keep
// holding the per-day unique index and block the user from checking in
// again that day.
func (s *Store) Delete(id uint) (int64, error) {
	result := s.DB.Unscoped().Delete(&Models.AttendanceRecord{}, id)
	return result.RowsAffected, result.Error
}

// GetStatistics aggregates the window in one query. Null total_hours
// count as zero in the sum; the average divides by all matching rows,
// not just the closed ones.
func (s *Store) GetStatistics(start, end datatypes.Date, userID *uint) (*Models.AttendanceStatistics, error) {
	var agg struct {
		TotalRecords    int64
		TotalHours      float64
		CheckedInCount  int64
		CheckedOutCount int64
		AbsentCount     int64
	}

	query := s.DB.Model(&Models.AttendanceRecord{}).
		Where("work_date >= ? AND work_date <= ?", start, end)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	err := query.Select(`COUNT(*) AS total_records,
		COALESCE(SUM(total_hours), 0) AS total_hours,
		COALESCE(SUM(CASE WHEN status = 'checked_in' THEN 1 ELSE 0 END), 0) AS checked_in_count,
		COALESCE(SUM(CASE WHEN status = 'checked_out' THEN 1 ELSE 0 END), 0) AS checked_out_count,
		COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0) AS absent_count`).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats := &Models.AttendanceStatistics{
		TotalRecords:    agg.TotalRecords,
		TotalHours:      agg.TotalHours,
		CheckedInCount:  agg.CheckedInCount,
		CheckedOutCount: agg.CheckedOutCount,
		AbsentCount:     agg.AbsentCount,
	}
	if agg.TotalRecords > 0 {
		stats.AverageHours = agg.TotalHours / float64(agg.TotalRecords)
	}
	return stats, nil
}
