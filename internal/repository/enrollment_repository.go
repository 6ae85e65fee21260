package repository

import (
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByUserAndChallenge(userID, challengeID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountLearners counts enrolled learners, optionally restricted to the
// given user IDs (used by the completed-only filter).
func (r *EnrollmentRepository) CountLearners(challengeID uint, userIDs []uint) (int64, error) {
	q := r.DB.Model(&model.Enrollment{}).Where("challenge_id = ?", challengeID)
	if userIDs != nil {
		q = q.Where("user_id IN ?", userIDs)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListLearners pages through enrolled learners ordered by user ID, the
// stable pagination key, optionally restricted to the given user IDs.
func (r *EnrollmentRepository) ListLearners(challengeID uint, userIDs []uint, offset, limit int) ([]model.User, error) {
	q := r.DB.Model(&model.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.challenge_id = ?", challengeID)
	if userIDs != nil {
		q = q.Where("users.id IN ?", userIDs)
	}

	var users []model.User
	err := q.Order("users.id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// SetRefundRequested flips the refund flag to true. The flag is
// monotonic: it is never written back to false.
func (r *EnrollmentRepository) SetRefundRequested(id uint) error {
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).
		UpdateColumn("refund_requested", true).Error
}

func (r *EnrollmentRepository) ListRefundRequested(challengeID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Preload("User").
		Where("challenge_id = ? AND refund_requested = ?", challengeID, true).
		Order("id ASC").
		Find(&enrollments).Error
	return enrollments, err
}
