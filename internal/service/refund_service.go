package service

import (
	"context"
	"errors"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RefundService derives refund eligibility from the completion state
// of a single learner: the single-learner specialization of the
// completion matrix's intersection test.
type RefundService struct {
	Slots       SlotStore
	Enrollments EnrollmentStore
	Submissions SubmissionStore
	Logger      *zap.Logger
}

func NewRefundService(slots SlotStore, enrollments EnrollmentStore, submissions SubmissionStore, logger *zap.Logger) *RefundService {
	return &RefundService{
		Slots:       slots,
		Enrollments: enrollments,
		Submissions: submissions,
		Logger:      logger,
	}
}

type RefundEligibility struct {
	AllSubmitted    bool `json:"allSubmitted"`
	RefundRequested bool `json:"refundRequested"`
}

type RefundRequestRow struct {
	UserID       uint      `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RequestedAt  time.Time `json:"requestedAt"`
	AllSubmitted bool      `json:"allSubmitted"`
}

// Evaluate never mutates the refund flag; it only reads it alongside
// the derived all-submitted signal. A challenge with no
// assignment-bearing slots qualifies nobody, matching the matrix's
// empty-intersection rule.
func (s *RefundService) Evaluate(ctx context.Context, userID, challengeID uint) (*RefundEligibility, error) {
	enrollment, err := s.Enrollments.FindByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	allSubmitted, err := s.allSubmitted(userID, challengeID)
	if err != nil {
		return nil, err
	}

	return &RefundEligibility{
		AllSubmitted:    allSubmitted,
		RefundRequested: enrollment.RefundRequested,
	}, nil
}

func (s *RefundService) allSubmitted(userID, challengeID uint) (bool, error) {
	slots, err := s.Slots.FindAssignmentBacked(challengeID)
	if err != nil {
		return false, err
	}
	if len(slots) == 0 {
		return false, nil
	}

	for i := range slots {
		ok, err := s.Submissions.HasSubmitted(userID, slots[i].ID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// RequestRefund flips the enrollment's refund flag false→true. The
// flip is monotonic and idempotent: requesting again once set is a
// no-op, not an error.
func (s *RefundService) RequestRefund(ctx context.Context, userID, challengeID uint) error {
	enrollment, err := s.Enrollments.FindByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrEnrollmentNotFound
		}
		return err
	}

	if enrollment.RefundRequested {
		return nil
	}
	return s.Enrollments.SetRefundRequested(enrollment.ID)
}

// ListRequests returns the challenge's refund requests with each
// learner's all-submitted signal, for admin review.
func (s *RefundService) ListRequests(ctx context.Context, challengeID uint) ([]RefundRequestRow, error) {
	enrollments, err := s.Enrollments.ListRefundRequested(challengeID)
	if err != nil {
		return nil, err
	}

	rows := make([]RefundRequestRow, 0, len(enrollments))
	for i := range enrollments {
		enr := &enrollments[i]
		allSubmitted, err := s.allSubmitted(enr.UserID, challengeID)
		if err != nil {
			return nil, err
		}

		row := RefundRequestRow{
			UserID:       enr.UserID,
			RequestedAt:  enr.UpdatedAt,
			AllSubmitted: allSubmitted,
		}
		if enr.User != nil {
			row.Name = enr.User.Name
			row.Email = enr.User.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}
