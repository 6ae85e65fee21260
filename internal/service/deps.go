package service

import (
	"context"
	"io"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
)

// Typed per-entity stores consumed by the services. The gorm
// repositories in internal/repository satisfy these; tests substitute
// map-backed fakes.

// Clock is the authoritative time source. Every deadline decision goes
// through it; caller-side clocks are never trusted.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

type ChallengeStore interface {
	Create(challenge *model.Challenge) error
	FindByID(id uint) (*model.Challenge, error)
	Update(challenge *model.Challenge) error
	Delete(id uint) error
	List(offset, limit int) ([]model.Challenge, int64, error)
	AddLectureCount(id uint, delta int) error
}

type LectureStore interface {
	Create(lecture *model.Lecture) error
	FindByID(id uint) (*model.Lecture, error)
	Update(lecture *model.Lecture) error
	Delete(id uint) error
	List(offset, limit int) ([]model.Lecture, int64, error)
}

type SlotStore interface {
	Create(slot *model.ScheduleSlot) error
	FindByID(id uint) (*model.ScheduleSlot, error)
	FindByChallenge(challengeID uint) ([]model.ScheduleSlot, error)
	FindAssignmentBacked(challengeID uint) ([]model.ScheduleSlot, error)
	UpdateTimes(id uint, openAt, dueAt time.Time) error
	Delete(id uint) error
}

type EnrollmentStore interface {
	Create(enrollment *model.Enrollment) error
	FindByUserAndChallenge(userID, challengeID uint) (*model.Enrollment, error)
	CountLearners(challengeID uint, userIDs []uint) (int64, error)
	ListLearners(challengeID uint, userIDs []uint, offset, limit int) ([]model.User, error)
	SetRefundRequested(id uint) error
	ListRefundRequested(challengeID uint) ([]model.Enrollment, error)
}

type AssignmentStore interface {
	Upsert(assignment *model.Assignment) error
	FindByLecture(lectureID uint) (*model.Assignment, error)
	DeleteByLecture(lectureID uint) error
}

type SubmissionStore interface {
	Create(submission *model.Submission) error
	FindByID(id uint) (*model.Submission, error)
	Update(submission *model.Submission) error
	Delete(id uint) error
	FindLatestByUserAndSlot(userID, slotID uint) (*model.Submission, error)
	ListSubmittedByUserAndSlot(userID, slotID uint) ([]model.Submission, error)
	SubmittedUserIDs(slotID uint) ([]uint, error)
	CountSubmittedUsers(slotID uint) (int64, error)
	HasSubmitted(userID, slotID uint) (bool, error)
}

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
}

// ImageStore is the blob storage collaborator for submission images.
type ImageStore interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	RemoveByURL(ctx context.Context, url string) error
}
