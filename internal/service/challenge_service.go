package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChallengeService struct {
	Challenges  ChallengeStore
	Enrollments EnrollmentStore
	Users       UserStore
	Slots       SlotStore
	Assignments AssignmentStore
	Schedule    *ScheduleService
	Clock       Clock
	Logger      *zap.Logger
}

func NewChallengeService(challenges ChallengeStore, enrollments EnrollmentStore, users UserStore, slots SlotStore, assignments AssignmentStore, schedule *ScheduleService, clock Clock, logger *zap.Logger) *ChallengeService {
	return &ChallengeService{
		Challenges:  challenges,
		Enrollments: enrollments,
		Users:       users,
		Slots:       slots,
		Assignments: assignments,
		Schedule:    schedule,
		Clock:       clock,
		Logger:      logger,
	}
}

// SlotView is a schedule slot decorated with its gate state at the
// authoritative now. Label disambiguates duplicate sequence positions
// ("3-1", "3-2").
type SlotView struct {
	SlotID           uint      `json:"slotId"`
	LectureID        uint      `json:"lectureId"`
	LectureName      string    `json:"lectureName"`
	Sequence         int       `json:"sequence"`
	Label            string    `json:"label"`
	OpenAt           time.Time `json:"openAt"`
	DueAt            time.Time `json:"dueAt"`
	IsOpen           bool      `json:"isOpen"`
	IsWithinDeadline bool      `json:"isWithinDeadline"`
}

type ChallengeDetail struct {
	Challenge *model.Challenge `json:"challenge"`
	Slots     []SlotView       `json:"slots"`
}

func (s *ChallengeService) Create(name string, openDate, closeDate time.Time) (*model.Challenge, error) {
	if !closeDate.After(openDate) {
		return nil, util.ErrChallengeDatesInvalid
	}

	challenge := &model.Challenge{
		Name:      name,
		OpenDate:  openDate,
		CloseDate: closeDate,
	}
	if err := s.Challenges.Create(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Update edits a challenge. When the open date moves, every existing
// slot is recomputed and persisted before the edit is considered
// complete; a partial recompute surfaces as PartialScheduleUpdateError.
func (s *ChallengeService) Update(id uint, name string, openDate, closeDate time.Time) (*model.Challenge, error) {
	challenge, err := s.Challenges.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	if !closeDate.After(openDate) {
		return nil, util.ErrChallengeDatesInvalid
	}

	openDateChanged := !challenge.OpenDate.Equal(openDate)
	challenge.Name = name
	challenge.OpenDate = openDate
	challenge.CloseDate = closeDate

	if err := s.Challenges.Update(challenge); err != nil {
		return nil, err
	}

	if openDateChanged {
		if err := s.Schedule.RecomputeChallenge(challenge); err != nil {
			return nil, err
		}
	}
	return challenge, nil
}

func (s *ChallengeService) Delete(id uint) error {
	if _, err := s.Challenges.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChallengeNotFound
		}
		return err
	}
	return s.Challenges.Delete(id)
}

func (s *ChallengeService) List(page, limit int) ([]model.Challenge, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Challenges.List((page-1)*limit, limit)
}

// Detail returns the challenge and its slots with gate state derived
// lazily from the clock source. Unlocking is never an active event.
func (s *ChallengeService) Detail(ctx context.Context, id uint) (*ChallengeDetail, error) {
	challenge, err := s.Challenges.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	slots, err := s.Slots.FindByChallenge(id)
	if err != nil {
		return nil, err
	}

	now, err := s.Clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0, len(slots))
	seqTotal := make(map[int]int, len(slots))
	seqSeen := make(map[int]int, len(slots))
	for i := range slots {
		seqTotal[slots[i].Sequence]++
	}
	for i := range slots {
		slot := &slots[i]
		seqSeen[slot.Sequence]++

		label := fmt.Sprintf("%d", slot.Sequence)
		if seqTotal[slot.Sequence] > 1 {
			label = fmt.Sprintf("%d-%d", slot.Sequence, seqSeen[slot.Sequence])
		}

		view := SlotView{
			SlotID:           slot.ID,
			LectureID:        slot.LectureID,
			Sequence:         slot.Sequence,
			Label:            label,
			OpenAt:           slot.OpenAt,
			DueAt:            slot.DueAt,
			IsOpen:           slot.IsOpen(now),
			IsWithinDeadline: slot.IsWithinDeadline(now),
		}
		if slot.Lecture != nil {
			view.LectureName = slot.Lecture.Name
		}
		views = append(views, view)
	}

	return &ChallengeDetail{Challenge: challenge, Slots: views}, nil
}

// SlotDetail is the learner view of a single slot. Lecture and
// assignment content stay hidden until the slot opens.
type SlotDetail struct {
	SlotView
	Lecture    *model.Lecture    `json:"lecture,omitempty"`
	Assignment *model.Assignment `json:"assignment,omitempty"`
}

// Slot returns one slot with gate state at the authoritative now.
// A slot that has not opened yet fails with ErrSlotLocked; once open
// it stays readable forever, deadline or not.
func (s *ChallengeService) Slot(ctx context.Context, slotID uint) (*SlotDetail, error) {
	slot, err := s.Slots.FindByID(slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSlotNotFound
		}
		return nil, err
	}

	now, err := s.Clock.Now(ctx)
	if err != nil {
		return nil, err
	}
	if !slot.IsOpen(now) {
		return nil, util.ErrSlotLocked
	}

	detail := &SlotDetail{
		SlotView: SlotView{
			SlotID:           slot.ID,
			LectureID:        slot.LectureID,
			Sequence:         slot.Sequence,
			Label:            fmt.Sprintf("%d", slot.Sequence),
			OpenAt:           slot.OpenAt,
			DueAt:            slot.DueAt,
			IsOpen:           true,
			IsWithinDeadline: slot.IsWithinDeadline(now),
		},
		Lecture: slot.Lecture,
	}
	if slot.Lecture != nil {
		detail.LectureName = slot.Lecture.Name
	}

	assignment, err := s.Assignments.FindByLecture(slot.LectureID)
	if err == nil {
		detail.Assignment = assignment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

// Enroll signs a learner up for a challenge. Re-enrolling is a no-op
// returning the existing record.
func (s *ChallengeService) Enroll(ctx context.Context, userID, challengeID uint) (*model.Enrollment, error) {
	if _, err := s.Challenges.FindByID(challengeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	existing, err := s.Enrollments.FindByUserAndChallenge(userID, challengeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now, err := s.Clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:      userID,
		ChallengeID: challengeID,
		EnrolledAt:  now,
	}
	if err := s.Enrollments.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}
