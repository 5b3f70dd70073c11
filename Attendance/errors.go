package Attendance

import "errors"

// Domain errors surfaced to callers as 400s. Storage failures are
// propagated unmodified and map to 500 at the HTTP layer.
var (
	ErrAlreadyCheckedIn  = errors.New("user already checked in today")
	ErrNotCheckedIn      = errors.New("user has not checked in today")
	ErrAlreadyCheckedOut = errors.New("user already checked out today")
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrStatusMismatch    = errors.New("status and check-out time disagree")
)
