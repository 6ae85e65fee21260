package util

import (
	"errors"
	"fmt"
)

var (
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrLectureNotFound    = errors.New("lecture not found")
	ErrSlotNotFound       = errors.New("schedule slot not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	ErrChallengeDatesInvalid = errors.New("close date must be after open date")
	ErrSequenceInvalid       = errors.New("sequence must be 1 or greater")
	ErrLinkRequired          = errors.New("submission link is required")

	// ErrSlotLocked hides slot content before its open_at. Reads never
	// re-lock once the open time has passed.
	ErrSlotLocked = errors.New("schedule slot is not open yet")

	// ErrDeadlineExceeded rejects submits/amends after the slot's
	// due_at. Always surfaced to the caller.
	ErrDeadlineExceeded = errors.New("submission deadline has passed")

	// ErrClockUnavailable means the authoritative time source could
	// not be reached. Deadline-gated operations must fail hard rather
	// than fall back to local time.
	ErrClockUnavailable = errors.New("authoritative clock unavailable")

	// ErrStorageFailure means a required asset upload failed; the
	// corresponding database write must not proceed.
	ErrStorageFailure = errors.New("asset storage failed")
)

// PartialScheduleUpdateError reports a bulk slot recompute that failed
// after updating a strict subset of slots. UpdatedSlotIDs lets the
// caller retry or reconcile the remainder.
type PartialScheduleUpdateError struct {
	ChallengeID    uint
	UpdatedSlotIDs []uint
	FailedSlotID   uint
	Err            error
}

func (e *PartialScheduleUpdateError) Error() string {
	return fmt.Sprintf("schedule recompute for challenge %d failed at slot %d after updating %d slots: %v",
		e.ChallengeID, e.FailedSlotID, len(e.UpdatedSlotIDs), e.Err)
}

func (e *PartialScheduleUpdateError) Unwrap() error {
	return e.Err
}
