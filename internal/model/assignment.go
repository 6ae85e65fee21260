package model

// Assignment is the homework attached to a lecture, at most one per
// lecture. A schedule slot whose lecture has no assignment is excluded
// from completion tracking entirely.
// swagger:model Assignment
type Assignment struct {
	BaseModel
	LectureID uint   `gorm:"uniqueIndex;not null" json:"lectureId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Body      string `gorm:"type:text" json:"body"`
}

func (Assignment) TableName() string {
	return "assignments"
}
