package model

// Lecture is owned independently of any challenge and may be attached
// to several challenges through ScheduleSlot.
// swagger:model Lecture
type Lecture struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	VideoURL    string `gorm:"size:500" json:"videoUrl"`
}

func (Lecture) TableName() string {
	return "lectures"
}
