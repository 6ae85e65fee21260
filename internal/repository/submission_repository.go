package repository

import (
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	if err := r.DB.First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) Update(submission *model.Submission) error {
	return r.DB.Save(submission).Error
}

func (r *SubmissionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Submission{}, id).Error
}

// FindLatestByUserAndSlot returns the authoritative row for a
// (user, slot) pair. Multiple rows per pair are allowed; submitted
// rows win, newest first.
func (r *SubmissionRepository) FindLatestByUserAndSlot(userID, slotID uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Where("user_id = ? AND slot_id = ?", userID, slotID).
		Order("is_submit DESC, submitted_at DESC, id DESC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListSubmittedByUserAndSlot returns every is_submit=true row for a
// (user, slot) pair, oldest first. All rows are surfaced as artifacts
// in the completion matrix, not just the authoritative one.
func (r *SubmissionRepository) ListSubmittedByUserAndSlot(userID, slotID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.DB.Where("user_id = ? AND slot_id = ? AND is_submit = ?", userID, slotID, true).
		Order("submitted_at ASC, id ASC").
		Find(&submissions).Error
	return submissions, err
}

// SubmittedUserIDs returns the distinct users with a submitted row for
// the slot.
func (r *SubmissionRepository) SubmittedUserIDs(slotID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Submission{}).
		Where("slot_id = ? AND is_submit = ?", slotID, true).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *SubmissionRepository) CountSubmittedUsers(slotID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("slot_id = ? AND is_submit = ?", slotID, true).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) HasSubmitted(userID, slotID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ? AND slot_id = ? AND is_submit = ?", userID, slotID, true).
		Count(&count).Error
	return count > 0, err
}
