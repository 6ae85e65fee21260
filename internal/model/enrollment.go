package model

import "time"

// Enrollment ties a learner to a challenge. RefundRequested flips
// once, false to true, and is never reverted.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID          uint      `gorm:"uniqueIndex:idx_enrollment_user_challenge;not null" json:"userId"`
	ChallengeID     uint      `gorm:"uniqueIndex:idx_enrollment_user_challenge;index;not null" json:"challengeId"`
	EnrolledAt      time.Time `gorm:"not null" json:"enrolledAt"`
	RefundRequested bool      `gorm:"default:false" json:"refundRequested"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
