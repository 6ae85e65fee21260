package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// matrixLookupConcurrency bounds the per-learner × per-slot submission
// lookups so a large page cannot flood the data store.
const matrixLookupConcurrency = 8

// CompletionService aggregates per-learner submission state across a
// challenge's assignment-bearing slots into the completion matrix used
// for review, completed-only filtering and refund eligibility.
type CompletionService struct {
	Slots       SlotStore
	Enrollments EnrollmentStore
	Submissions SubmissionStore
	Rates       *RateCache
	Logger      *zap.Logger
}

func NewCompletionService(slots SlotStore, enrollments EnrollmentStore, submissions SubmissionStore, rates *RateCache, logger *zap.Logger) *CompletionService {
	return &CompletionService{
		Slots:       slots,
		Enrollments: enrollments,
		Submissions: submissions,
		Rates:       rates,
		Logger:      logger,
	}
}

// Artifact is one submitted record; a (user, slot) pair may carry
// several and all are surfaced.
type Artifact struct {
	SubmissionID uint      `json:"submissionId"`
	Link         string    `json:"link"`
	Comment      string    `json:"comment"`
	ImageURL     string    `json:"imageUrl"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type SlotCompletion struct {
	SlotID       uint       `json:"slotId"`
	LectureID    uint       `json:"lectureId"`
	LectureName  string     `json:"lectureName"`
	Sequence     int        `json:"sequence"`
	DueAt        time.Time  `json:"dueAt"`
	IsSubmitted  bool       `json:"isSubmitted"`
	SubmissionID *uint      `json:"submissionId,omitempty"`
	Artifacts    []Artifact `json:"artifacts,omitempty"`
}

type LearnerRow struct {
	UserID  uint             `json:"userId"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	PerSlot []SlotCompletion `json:"perSlot"`
}

type CompletionMatrix struct {
	Rows     []LearnerRow `json:"rows"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

type SlotRate struct {
	SlotID         uint  `json:"slotId"`
	LectureID      uint  `json:"lectureId"`
	Sequence       int   `json:"sequence"`
	SubmittedCount int64 `json:"submittedCount"`
	TotalEnrolled  int64 `json:"totalEnrolled"`
	RatePercent    int   `json:"ratePercent"`
}

// BuildMatrix assembles one page of the learner × slot completion
// grid. With completedOnly, only learners present in the submitted-set
// of every assignment-bearing slot qualify; no qualifying slots means
// no results. The per-cell lookups run concurrently under a bounded
// group, but cells are written by (learner, slot) index so the
// assembled rows always follow sequence order.
func (s *CompletionService) BuildMatrix(ctx context.Context, challengeID uint, page, pageSize int, completedOnly bool) (*CompletionMatrix, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	matrix := &CompletionMatrix{Rows: []LearnerRow{}, Page: page, PageSize: pageSize}

	slots, err := s.Slots.FindAssignmentBacked(challengeID)
	if err != nil {
		return nil, err
	}

	var filter []uint
	if completedOnly {
		if len(slots) == 0 {
			return matrix, nil
		}
		qualified, err := s.completedIntersection(slots)
		if err != nil {
			return nil, err
		}
		if len(qualified) == 0 {
			return matrix, nil
		}
		filter = qualified
	}

	total, err := s.Enrollments.CountLearners(challengeID, filter)
	if err != nil {
		return nil, err
	}
	matrix.Total = total

	learners, err := s.Enrollments.ListLearners(challengeID, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	rows := make([]LearnerRow, len(learners))
	for i, learner := range learners {
		rows[i] = LearnerRow{
			UserID:  learner.ID,
			Name:    learner.Name,
			Email:   learner.Email,
			PerSlot: make([]SlotCompletion, len(slots)),
		}
	}

	var g errgroup.Group
	g.SetLimit(matrixLookupConcurrency)
	for li := range rows {
		for si := range slots {
			li, si := li, si
			g.Go(func() error {
				cell, err := s.buildCell(rows[li].UserID, &slots[si])
				if err != nil {
					return err
				}
				rows[li].PerSlot[si] = cell
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matrix.Rows = rows
	return matrix, nil
}

func (s *CompletionService) buildCell(userID uint, slot *model.ScheduleSlot) (SlotCompletion, error) {
	cell := SlotCompletion{
		SlotID:    slot.ID,
		LectureID: slot.LectureID,
		Sequence:  slot.Sequence,
		DueAt:     slot.DueAt,
	}
	if slot.Lecture != nil {
		cell.LectureName = slot.Lecture.Name
	}

	submissions, err := s.Submissions.ListSubmittedByUserAndSlot(userID, slot.ID)
	if err != nil {
		return SlotCompletion{}, err
	}
	if len(submissions) == 0 {
		return cell, nil
	}

	cell.IsSubmitted = true
	latestID := submissions[len(submissions)-1].ID
	cell.SubmissionID = &latestID
	cell.Artifacts = make([]Artifact, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		cell.Artifacts = append(cell.Artifacts, Artifact{
			SubmissionID: sub.ID,
			Link:         sub.Link,
			Comment:      sub.Comment,
			ImageURL:     sub.ImageURL,
			SubmittedAt:  sub.SubmittedAt,
		})
	}
	return cell, nil
}

// completedIntersection intersects the submitted user sets of every
// qualifying slot; a learner must appear in all of them.
func (s *CompletionService) completedIntersection(slots []model.ScheduleSlot) ([]uint, error) {
	var qualified map[uint]struct{}
	for i := range slots {
		ids, err := s.Submissions.SubmittedUserIDs(slots[i].ID)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			qualified = make(map[uint]struct{}, len(ids))
			for _, id := range ids {
				qualified[id] = struct{}{}
			}
		} else {
			next := make(map[uint]struct{}, len(ids))
			for _, id := range ids {
				if _, ok := qualified[id]; ok {
					next[id] = struct{}{}
				}
			}
			qualified = next
		}
		if len(qualified) == 0 {
			return nil, nil
		}
	}
	return sortedSetKeys(qualified), nil
}

// SubmissionRateBySlot reports, per assignment-bearing slot, how many
// enrolled learners have submitted. Percentages round half away from
// zero; a challenge with no learners reports 0. Snapshots are cached
// briefly in Redis and invalidated on submission writes.
func (s *CompletionService) SubmissionRateBySlot(ctx context.Context, challengeID uint) ([]SlotRate, error) {
	if rates, ok := s.Rates.Get(ctx, challengeID); ok {
		return rates, nil
	}

	enrolled, err := s.Enrollments.CountLearners(challengeID, nil)
	if err != nil {
		return nil, err
	}
	slots, err := s.Slots.FindAssignmentBacked(challengeID)
	if err != nil {
		return nil, err
	}

	rates := make([]SlotRate, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		submitted, err := s.Submissions.CountSubmittedUsers(slot.ID)
		if err != nil {
			return nil, err
		}
		rate := 0
		if enrolled > 0 {
			rate = int(math.Round(float64(submitted) / float64(enrolled) * 100))
		}
		rates = append(rates, SlotRate{
			SlotID:         slot.ID,
			LectureID:      slot.LectureID,
			Sequence:       slot.Sequence,
			SubmittedCount: submitted,
			TotalEnrolled:  enrolled,
			RatePercent:    rate,
		})
	}

	s.Rates.Set(ctx, challengeID, rates)
	return rates, nil
}

func sortedSetKeys(set map[uint]struct{}) []uint {
	keys := make([]uint, 0, len(set))
	for id := range set {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
