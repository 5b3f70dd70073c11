package Attendance

import (
	"fmt"
	"testing"
	"time"

	"Tempus/Models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&Models.User{}, &Models.AttendanceRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestCheckInCreatesTodayRecord(t *testing.T) {
	service := NewService(setupTestDB(t))

	record, err := service.CheckIn(1, strPtr("on site"))
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if record.ID == 0 {
		t.Error("expected a store-assigned id")
	}
	if record.Status != Models.StatusCheckedIn {
		t.Errorf("status = %q, want %q", record.Status, Models.StatusCheckedIn)
	}
	if record.CheckOutTime != nil || record.TotalHours != nil {
		t.Error("new record must have no check-out time or total hours")
	}
	if record.Notes == nil || *record.Notes != "on site" {
		t.Errorf("notes not persisted: %v", record.Notes)
	}

	wantDate := time.Time(DateOf(time.Now()))
	gotDate := time.Time(record.WorkDate)
	if !gotDate.Equal(wantDate) {
		t.Errorf("work date = %v, want %v", gotDate, wantDate)
	}
}

func TestCheckInTwiceSameDayFails(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	first, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("first CheckIn failed: %v", err)
	}

	if _, err := service.CheckIn(1, nil); err != ErrAlreadyCheckedIn {
		t.Fatalf("second CheckIn error = %v, want ErrAlreadyCheckedIn", err)
	}

	// The first record must be untouched and remain the only one.
	var count int64
	db.Model(&Models.AttendanceRecord{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Fatalf("record count = %d, want 1", count)
	}
	stored, found, err := service.Store.FindByID(first.ID)
	if err != nil || !found {
		t.Fatalf("first record disappeared: found=%v err=%v", found, err)
	}
	if !stored.CheckInTime.Equal(first.CheckInTime) || stored.Status != Models.StatusCheckedIn {
		t.Error("first record was modified by the failed second check-in")
	}
}

func TestCheckInIsPerUser(t *testing.T) {
	service := NewService(setupTestDB(t))

	if _, err := service.CheckIn(1, nil); err != nil {
		t.Fatalf("CheckIn user 1 failed: %v", err)
	}
	if _, err := service.CheckIn(2, nil); err != nil {
		t.Fatalf("CheckIn user 2 failed: %v", err)
	}
}

func TestCheckOutWithoutCheckInFails(t *testing.T) {
	service := NewService(setupTestDB(t))

	if _, err := service.CheckOut(1, nil); err != ErrNotCheckedIn {
		t.Fatalf("CheckOut error = %v, want ErrNotCheckedIn", err)
	}
}

func TestCheckOutComputesTotalHours(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	// A check-in 8h30m ago must yield total_hours 8.50.
	now := time.Now()
	record := &Models.AttendanceRecord{
		UserID:      1,
		WorkDate:    DateOf(now),
		CheckInTime: now.Add(-8*time.Hour - 30*time.Minute),
		Status:      Models.StatusCheckedIn,
	}
	if err := service.Store.Create(record); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	updated, err := service.CheckOut(1, nil)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if updated.Status != Models.StatusCheckedOut {
		t.Errorf("status = %q, want %q", updated.Status, Models.StatusCheckedOut)
	}
	if updated.CheckOutTime == nil {
		t.Fatal("check-out time not set")
	}
	if updated.TotalHours == nil || *updated.TotalHours != 8.5 {
		t.Errorf("total hours = %v, want 8.50", updated.TotalHours)
	}
}

func TestCheckOutTwiceFailsAndPreservesHours(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	now := time.Now()
	record := &Models.AttendanceRecord{
		UserID:      1,
		WorkDate:    DateOf(now),
		CheckInTime: now.Add(-2 * time.Hour),
		Status:      Models.StatusCheckedIn,
	}
	if err := service.Store.Create(record); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	first, err := service.CheckOut(1, nil)
	if err != nil {
		t.Fatalf("first CheckOut failed: %v", err)
	}
	if _, err := service.CheckOut(1, nil); err != ErrAlreadyCheckedOut {
		t.Fatalf("second CheckOut error = %v, want ErrAlreadyCheckedOut", err)
	}

	stored, _, err := service.Store.FindByID(record.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.TotalHours == nil || *stored.TotalHours != *first.TotalHours {
		t.Errorf("total hours changed by the failed second check-out: %v", stored.TotalHours)
	}
}

func TestCheckOutNotesFallBackToCheckInNotes(t *testing.T) {
	service := NewService(setupTestDB(t))

	if _, err := service.CheckIn(1, strPtr("morning note")); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	updated, err := service.CheckOut(1, nil)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != "morning note" {
		t.Errorf("notes = %v, want the check-in notes", updated.Notes)
	}
}

func TestCheckOutNotesOverrideCheckInNotes(t *testing.T) {
	service := NewService(setupTestDB(t))

	if _, err := service.CheckIn(1, strPtr("morning note")); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	updated, err := service.CheckOut(1, strPtr("leaving early"))
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != "leaving early" {
		t.Errorf("notes = %v, want the check-out notes", updated.Notes)
	}
}

func TestGetTodayAttendance(t *testing.T) {
	service := NewService(setupTestDB(t))

	record, err := service.GetTodayAttendance(1)
	if err != nil {
		t.Fatalf("GetTodayAttendance failed: %v", err)
	}
	if record != nil {
		t.Fatal("expected nil before check-in")
	}

	created, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	record, err = service.GetTodayAttendance(1)
	if err != nil {
		t.Fatalf("GetTodayAttendance failed: %v", err)
	}
	if record == nil || record.ID != created.ID {
		t.Errorf("today record = %v, want id %d", record, created.ID)
	}
}

func TestStatisticsNullHoursCountAsZero(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	seed := []struct {
		day    int
		hours  *float64
		status string
	}{
		{0, floatPtr(8.0), Models.StatusCheckedOut},
		{1, floatPtr(7.5), Models.StatusCheckedOut},
		{2, nil, Models.StatusCheckedIn},
	}
	for _, item := range seed {
		day := base.AddDate(0, 0, item.day)
		record := &Models.AttendanceRecord{
			UserID:      1,
			WorkDate:    DateOf(day),
			CheckInTime: day,
			TotalHours:  item.hours,
			Status:      item.status,
		}
		if err := service.Store.Create(record); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	stats, err := service.GetStatistics(base, base.AddDate(0, 0, 2), nil)
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalRecords != 3 {
		t.Errorf("totalRecords = %d, want 3", stats.TotalRecords)
	}
	if stats.TotalHours != 15.5 {
		t.Errorf("totalHours = %v, want 15.5", stats.TotalHours)
	}
	// Null hours stay in the denominator: 15.5 / 3 rounded to 4 places.
	if stats.AverageHours != 5.1667 {
		t.Errorf("averageHours = %v, want 5.1667", stats.AverageHours)
	}
	if stats.CheckedInCount != 1 || stats.CheckedOutCount != 2 || stats.AbsentCount != 0 {
		t.Errorf("status counts = %d/%d/%d, want 1/2/0",
			stats.CheckedInCount, stats.CheckedOutCount, stats.AbsentCount)
	}
}

func TestStatisticsEmptyWindowIsAllZeroes(t *testing.T) {
	service := NewService(setupTestDB(t))

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	stats, err := service.GetStatistics(start, start.AddDate(0, 0, 7), nil)
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalRecords != 0 || stats.TotalHours != 0 || stats.AverageHours != 0 ||
		stats.CheckedInCount != 0 || stats.CheckedOutCount != 0 || stats.AbsentCount != 0 {
		t.Errorf("expected all-zero statistics, got %+v", stats)
	}
}

func TestStatisticsFilterByUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	for _, userID := range []uint{1, 2} {
		record := &Models.AttendanceRecord{
			UserID:      userID,
			WorkDate:    DateOf(day),
			CheckInTime: day,
			TotalHours:  floatPtr(8.0),
			Status:      Models.StatusCheckedOut,
		}
		if err := service.Store.Create(record); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	userID := uint(1)
	stats, err := service.GetStatistics(day, day, &userID)
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.TotalRecords != 1 || stats.TotalHours != 8.0 {
		t.Errorf("filtered stats = %+v, want one 8.0h record", stats)
	}
}

func TestUpdateRecordRejectsStatusMismatch(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	created, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	// checked_out with no check-out time must be rejected.
	status := Models.StatusCheckedOut
	if _, err := service.UpdateRecord(created.ID, RecordUpdate{Status: &status}); err != ErrStatusMismatch {
		t.Fatalf("UpdateRecord error = %v, want ErrStatusMismatch", err)
	}

	// Supplying both sides together is fine.
	checkOut := time.Now()
	updated, err := service.UpdateRecord(created.ID, RecordUpdate{
		Status:       &status,
		CheckOutTime: &checkOut,
		TotalHours:   floatPtr(7.25),
	})
	if err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}
	if updated.Status != Models.StatusCheckedOut || updated.TotalHours == nil || *updated.TotalHours != 7.25 {
		t.Errorf("updated record = %+v", updated)
	}
}

func TestUpdateRecordNotFound(t *testing.T) {
	service := NewService(setupTestDB(t))

	notes := "x"
	if _, err := service.UpdateRecord(42, RecordUpdate{Notes: &notes}); err != ErrRecordNotFound {
		t.Fatalf("UpdateRecord error = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	service := NewService(setupTestDB(t))

	created, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if err := service.DeleteRecord(created.ID); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := service.DeleteRecord(created.ID); err != ErrRecordNotFound {
		t.Fatalf("second DeleteRecord error = %v, want ErrRecordNotFound", err)
	}
}

func TestCheckInAgainAfterDelete(t *testing.T) {
	service := NewService(setupTestDB(t))

	first, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if err := service.DeleteRecord(first.ID); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}

	today, err := service.GetTodayAttendance(1)
	if err != nil {
		t.Fatalf("GetTodayAttendance failed: %v", err)
	}
	if today != nil {
		t.Fatalf("today = %+v after delete, want nil", today)
	}

	// The deleted record must free the per-day slot entirely, not just
	// disappear from reads.
	second, err := service.CheckIn(1, nil)
	if err != nil {
		t.Fatalf("check-in after delete failed: %v", err)
	}
	if second.ID == first.ID {
		t.Errorf("re-check-in reused the deleted record id %d", first.ID)
	}
}

func TestRoundingIsHalfUp(t *testing.T) {
	if got := round2(8.5); got != 8.5 {
		t.Errorf("round2(8.5) = %v", got)
	}
	if got := round2(7.999); got != 8.0 {
		t.Errorf("round2(7.999) = %v, want 8.0", got)
	}
	if got := round2(0.125); got != 0.13 {
		t.Errorf("round2(0.125) = %v, want 0.13", got)
	}
	if got := round4(15.5 / 3); got != 5.1667 {
		t.Errorf("round4(15.5/3) = %v, want 5.1667", got)
	}
}
