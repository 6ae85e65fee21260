package service

import (
	"errors"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScheduleService derives slot open/due timestamps from a challenge's
// open date and a lecture's 1-based sequence position, and keeps every
// slot of a challenge in sync when that open date is edited.
type ScheduleService struct {
	Challenges ChallengeStore
	Lectures   LectureStore
	Slots      SlotStore
	Loc        *time.Location
	Logger     *zap.Logger
}

func NewScheduleService(challenges ChallengeStore, lectures LectureStore, slots SlotStore, loc *time.Location, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		Challenges: challenges,
		Lectures:   lectures,
		Slots:      slots,
		Loc:        loc,
		Logger:     logger,
	}
}

// ComputeSlotTimes returns the open and due timestamps for a slot:
// open_at = challenge open date + (sequence-1) days at midnight in the
// reference timezone, due_at = open_at + 1 day.
func ComputeSlotTimes(openDate time.Time, sequence int, loc *time.Location) (openAt, dueAt time.Time) {
	d := openDate.In(loc)
	openAt = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, sequence-1)
	dueAt = openAt.AddDate(0, 0, 1)
	return openAt, dueAt
}

// AttachLecture creates a schedule slot for the lecture at the given
// sequence position. Sequence values are assigned explicitly and may
// repeat within a challenge; same-sequence slots unlock independently.
func (s *ScheduleService) AttachLecture(challengeID, lectureID uint, sequence int) (*model.ScheduleSlot, error) {
	if sequence < 1 {
		return nil, util.ErrSequenceInvalid
	}

	challenge, err := s.Challenges.FindByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if _, err := s.Lectures.FindByID(lectureID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}

	openAt, dueAt := ComputeSlotTimes(challenge.OpenDate, sequence, s.Loc)
	slot := &model.ScheduleSlot{
		ChallengeID: challengeID,
		LectureID:   lectureID,
		Sequence:    sequence,
		OpenAt:      openAt,
		DueAt:       dueAt,
	}
	if err := s.Slots.Create(slot); err != nil {
		return nil, err
	}
	if err := s.Challenges.AddLectureCount(challengeID, 1); err != nil {
		s.Logger.Warn("failed to bump lecture count", zap.Uint("challengeId", challengeID), zap.Error(err))
	}
	return slot, nil
}

// DetachSlot removes a slot from its challenge. Submissions that point
// at the slot stay queryable through their own records.
func (s *ScheduleService) DetachSlot(slotID uint) error {
	slot, err := s.Slots.FindByID(slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSlotNotFound
		}
		return err
	}
	if err := s.Slots.Delete(slot.ID); err != nil {
		return err
	}
	if err := s.Challenges.AddLectureCount(slot.ChallengeID, -1); err != nil {
		s.Logger.Warn("failed to drop lecture count", zap.Uint("challengeId", slot.ChallengeID), zap.Error(err))
	}
	return nil
}

// RecomputeChallenge recalculates and persists the timestamps of every
// slot of the challenge from its current open date. The per-slot
// updates are deliberately not wrapped in a transaction; a failure
// partway through is surfaced as a PartialScheduleUpdateError naming
// the slots already updated so the caller can retry the rest.
func (s *ScheduleService) RecomputeChallenge(challenge *model.Challenge) error {
	slots, err := s.Slots.FindByChallenge(challenge.ID)
	if err != nil {
		return err
	}

	updated := make([]uint, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		openAt, dueAt := ComputeSlotTimes(challenge.OpenDate, slot.Sequence, s.Loc)
		if err := s.Slots.UpdateTimes(slot.ID, openAt, dueAt); err != nil {
			s.Logger.Error("slot recompute failed",
				zap.Uint("challengeId", challenge.ID),
				zap.Uint("slotId", slot.ID),
				zap.Int("updated", len(updated)),
				zap.Error(err))
			return &util.PartialScheduleUpdateError{
				ChallengeID:    challenge.ID,
				UpdatedSlotIDs: updated,
				FailedSlotID:   slot.ID,
				Err:            err,
			}
		}
		updated = append(updated, slot.ID)
	}

	s.Logger.Info("challenge schedule recomputed",
		zap.Uint("challengeId", challenge.ID),
		zap.Int("slots", len(updated)))
	return nil
}
