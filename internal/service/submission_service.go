package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionService records learner submissions for schedule slots.
// Every write is gated on the slot deadline using clock-source time.
// The deadline check and the write are two steps; a submission landing
// in the window between them is an accepted race, not locked away.
type SubmissionService struct {
	Slots       SlotStore
	Submissions SubmissionStore
	Clock       Clock
	Storage     ImageStore
	Rates       *RateCache
	Logger      *zap.Logger
}

func NewSubmissionService(slots SlotStore, submissions SubmissionStore, clock Clock, storage ImageStore, rates *RateCache, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		Slots:       slots,
		Submissions: submissions,
		Clock:       clock,
		Storage:     storage,
		Rates:       rates,
		Logger:      logger,
	}
}

// ImageUpload carries an optional submission image.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type SubmitInput struct {
	Link    string
	Comment string
	Image   *ImageUpload
}

type AmendInput struct {
	Link        string
	Comment     string
	Image       *ImageUpload
	RemoveImage bool
}

func (s *SubmissionService) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	filename := fmt.Sprintf("submissions/%s%s", uuid.New().String(), path.Ext(img.Filename))
	url, err := s.Storage.Upload(ctx, filename, img.Reader, img.Size, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrStorageFailure, err)
	}
	return url, nil
}

// releaseImage is best-effort cleanup: a failed delete is logged and
// swallowed, never blocking the record update.
func (s *SubmissionService) releaseImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.Storage.RemoveByURL(ctx, url); err != nil {
		s.Logger.Warn("failed to release submission image", zap.String("url", url), zap.Error(err))
	}
}

// Submit creates a submission for the slot. Fails with
// ErrDeadlineExceeded once the slot's due_at has passed on the
// authoritative clock. A failed image upload aborts before any
// database write.
func (s *SubmissionService) Submit(ctx context.Context, userID, slotID uint, in SubmitInput) (*model.Submission, error) {
	if in.Link == "" {
		return nil, util.ErrLinkRequired
	}

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
	if !slot.IsWithinDeadline(now) {
		monitoring.SubmissionsTotal.WithLabelValues("rejected_deadline").Inc()
		return nil, util.ErrDeadlineExceeded
	}

	imageURL := ""
	if in.Image != nil {
		imageURL, err = s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
	}

	submission := &model.Submission{
		UserID:      userID,
		SlotID:      slotID,
		SubmittedAt: now,
		IsSubmit:    true,
		Link:        in.Link,
		Comment:     in.Comment,
		ImageURL:    imageURL,
	}
	if err := s.Submissions.Create(submission); err != nil {
		return nil, err
	}

	monitoring.SubmissionsTotal.WithLabelValues("accepted").Inc()
	s.Rates.Invalidate(ctx, slot.ChallengeID)
	return submission, nil
}

// Amend edits an existing submission while its slot deadline still
// holds. A replaced or cleared image is released best-effort; the new
// image, when present, must upload before the record changes.
func (s *SubmissionService) Amend(ctx context.Context, userID, submissionID uint, in AmendInput) (*model.Submission, error) {
	if in.Link == "" {
		return nil, util.ErrLinkRequired
	}

	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.UserID != userID {
		return nil, util.ErrSubmissionNotFound
	}

	slot, err := s.Slots.FindByID(submission.SlotID)
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
	if !slot.IsWithinDeadline(now) {
		monitoring.SubmissionsTotal.WithLabelValues("rejected_deadline").Inc()
		return nil, util.ErrDeadlineExceeded
	}

	newImageURL := submission.ImageURL
	if in.Image != nil {
		newImageURL, err = s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
	} else if in.RemoveImage {
		newImageURL = ""
	}

	if submission.ImageURL != "" && submission.ImageURL != newImageURL {
		s.releaseImage(ctx, submission.ImageURL)
	}

	submission.Link = in.Link
	submission.Comment = in.Comment
	submission.ImageURL = newImageURL
	if err := s.Submissions.Update(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// GetForUser returns the authoritative submission for a (user, slot)
// pair, or nil when absent. Reads stay available after the deadline.
func (s *SubmissionService) GetForUser(ctx context.Context, userID, slotID uint) (*model.Submission, error) {
	submission, err := s.Submissions.FindLatestByUserAndSlot(userID, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return submission, nil
}

// Delete removes a submission, releasing any stored image first
// (best-effort). Admins may delete any submission; learners only
// their own.
func (s *SubmissionService) Delete(ctx context.Context, requesterID, submissionID uint, isAdmin bool) error {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSubmissionNotFound
		}
		return err
	}
	if !isAdmin && submission.UserID != requesterID {
		return util.ErrSubmissionNotFound
	}

	s.releaseImage(ctx, submission.ImageURL)

	if err := s.Submissions.Delete(submission.ID); err != nil {
		return err
	}

	if slot, err := s.Slots.FindByID(submission.SlotID); err == nil {
		s.Rates.Invalidate(ctx, slot.ChallengeID)
	}
	return nil
}
