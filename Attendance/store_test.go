package Attendance

import (
	"testing"
	"time"

	"Tempus/Models"
)

func seedRecord(t *testing.T, store *Store, userID uint, day time.Time, hours *float64, status string) *Models.AttendanceRecord {
	t.Helper()
	record := &Models.AttendanceRecord{
		UserID:      userID,
		WorkDate:    DateOf(day),
		CheckInTime: day,
		TotalHours:  hours,
		Status:      status,
	}
	if err := store.Create(record); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}
	return record
}

func TestCreateRoundTrip(t *testing.T) {
	store := NewStore(setupTestDB(t))

	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	checkOut := checkIn.Add(8*time.Hour + 30*time.Minute)
	hours := 8.5
	notes := "client visit"
	record := &Models.AttendanceRecord{
		UserID:       7,
		WorkDate:     DateOf(checkIn),
		CheckInTime:  checkIn,
		CheckOutTime: &checkOut,
		TotalHours:   &hours,
		Status:       Models.StatusCheckedOut,
		Notes:        &notes,
	}
	if err := store.Create(record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("Create did not assign an id")
	}

	fetched, found, err := store.FindByID(record.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !found {
		t.Fatal("created record not found by id")
	}
	if fetched.UserID != 7 ||
		!time.Time(fetched.WorkDate).Equal(time.Time(record.WorkDate)) ||
		!fetched.CheckInTime.Equal(checkIn) ||
		fetched.CheckOutTime == nil || !fetched.CheckOutTime.Equal(checkOut) ||
		fetched.TotalHours == nil || *fetched.TotalHours != 8.5 ||
		fetched.Status != Models.StatusCheckedOut ||
		fetched.Notes == nil || *fetched.Notes != "client visit" {
		t.Errorf("round-trip mismatch: %+v", fetched)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	record, found, err := store.FindByID(99)
	if err != nil {
		t.Fatalf("FindByID returned an error for a missing row: %v", err)
	}
	if found || record != nil {
		t.Error("expected not-found, no error")
	}
}

func TestUniqueIndexRejectsSecondSameDayInsert(t *testing.T) {
	store := NewStore(setupTestDB(t))

	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	seedRecord(t, store, 1, day, nil, Models.StatusCheckedIn)

	duplicate := &Models.AttendanceRecord{
		UserID:      1,
		WorkDate:    DateOf(day),
		CheckInTime: day.Add(time.Minute),
		Status:      Models.StatusCheckedIn,
	}
	err := store.Create(duplicate)
	if err == nil {
		t.Fatal("second insert for the same user and day must fail")
	}
	if !isDuplicateKey(err) {
		t.Errorf("error not recognized as a duplicate key: %v", err)
	}
}

func TestFindByDateRangeInclusiveBounds(t *testing.T) {
	store := NewStore(setupTestDB(t))

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 2)
	for offset := -1; offset <= 3; offset++ {
		seedRecord(t, store, 1, start.AddDate(0, 0, offset), nil, Models.StatusCheckedIn)
	}

	records, err := store.FindByDateRange(DateOf(start), DateOf(end), nil)
	if err != nil {
		t.Fatalf("FindByDateRange failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (inclusive bounds)", len(records))
	}
	for _, record := range records {
		workDate := time.Time(record.WorkDate)
		if workDate.Before(time.Time(DateOf(start))) || workDate.After(time.Time(DateOf(end))) {
			t.Errorf("record outside window: %v", workDate)
		}
	}
}

func TestFindByDateRangeScopedToUser(t *testing.T) {
	store := NewStore(setupTestDB(t))

	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	seedRecord(t, store, 1, day, nil, Models.StatusCheckedIn)
	seedRecord(t, store, 2, day, nil, Models.StatusCheckedIn)

	userID := uint(2)
	records, err := store.FindByDateRange(DateOf(day), DateOf(day), &userID)
	if err != nil {
		t.Fatalf("FindByDateRange failed: %v", err)
	}
	if len(records) != 1 || records[0].UserID != 2 {
		t.Errorf("got %+v, want only user 2", records)
	}
}

func TestFindAllOrderingAndPagination(t *testing.T) {
	store := NewStore(setupTestDB(t))

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	for offset := 0; offset < 5; offset++ {
		seedRecord(t, store, uint(offset+1), base.AddDate(0, 0, offset), nil, Models.StatusCheckedIn)
	}

	records, err := store.FindAll(2, 0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Most recent work date first.
	first := time.Time(records[0].WorkDate)
	second := time.Time(records[1].WorkDate)
	if !first.After(second) {
		t.Errorf("ordering wrong: %v then %v", first, second)
	}

	page2, err := store.FindAll(2, 2)
	if err != nil {
		t.Fatalf("FindAll with offset failed: %v", err)
	}
	if len(page2) != 2 || time.Time(page2[0].WorkDate).Equal(first) {
		t.Errorf("offset page overlaps the first page")
	}
}

func TestFindByUserIDHonorsPagination(t *testing.T) {
	store := NewStore(setupTestDB(t))

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	for offset := 0; offset < 4; offset++ {
		seedRecord(t, store, 1, base.AddDate(0, 0, offset), nil, Models.StatusCheckedIn)
	}
	seedRecord(t, store, 2, base, nil, Models.StatusCheckedIn)

	records, err := store.FindByUserID(1, 3, 0)
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want limit of 3", len(records))
	}
	for _, record := range records {
		if record.UserID != 1 {
			t.Errorf("foreign record in user history: %+v", record)
		}
	}

	rest, err := store.FindByUserID(1, 3, 3)
	if err != nil {
		t.Fatalf("FindByUserID with offset failed: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("got %d records after offset, want 1", len(rest))
	}
}

func TestSameDayOrderingFallsBackToCheckInTime(t *testing.T) {
	store := NewStore(setupTestDB(t))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	seedRecord(t, store, 1, day.Add(8*time.Hour), nil, Models.StatusCheckedIn)
	seedRecord(t, store, 2, day.Add(10*time.Hour), nil, Models.StatusCheckedIn)

	records, err := store.FindAll(0, 0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if !records[0].CheckInTime.After(records[1].CheckInTime) {
		t.Errorf("same-day records not ordered by check-in time descending")
	}
}

func TestUpdateReportsAffectedRows(t *testing.T) {
	store := NewStore(setupTestDB(t))

	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	record := seedRecord(t, store, 1, day, nil, Models.StatusCheckedIn)

	rows, err := store.Update(record.ID, map[string]interface{}{"notes": "updated"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows affected = %d, want 1", rows)
	}

	rows, err = store.Update(999, map[string]interface{}{"notes": "ghost"})
	if err != nil {
		t.Fatalf("Update of missing row errored: %v", err)
	}
	if rows != 0 {
		t.Errorf("rows affected = %d for missing row, want 0", rows)
	}
}
