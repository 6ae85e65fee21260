package model

import "time"

// Submission records a learner's answer for a schedule slot. The
// logical key is (user_id, slot_id) but multiple rows per key are
// allowed; any is_submit=true row counts as completion evidence and
// all such rows are surfaced as artifacts in the completion matrix.
// Lateness is never stored: it is derived from the slot's due_at.
// swagger:model Submission
type Submission struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_submission_user_slot;not null" json:"userId"`
	SlotID      uint      `gorm:"index:idx_submission_user_slot;index;not null" json:"slotId"`
	SubmittedAt time.Time `gorm:"not null" json:"submittedAt"`
	IsSubmit    bool      `gorm:"default:false;index" json:"isSubmit"`
	Link        string    `gorm:"size:500" json:"link"`
	Comment     string    `gorm:"type:text" json:"comment"`
	ImageURL    string    `gorm:"size:500" json:"imageUrl"`
}

func (Submission) TableName() string {
	return "submissions"
}
