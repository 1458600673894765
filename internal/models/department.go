package models

import "time"

type Department struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Professors []Professor `gorm:"foreignKey:DepartmentID;constraint:OnDelete:RESTRICT" json:"professors,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

// ProfessorCount returns the number of loaded professors.
func (d *Department) ProfessorCount() int {
	return len(d.Professors)
}
