package models

import "time"

type ProfessorStatus string

const (
	ProfessorActive   ProfessorStatus = "active"
	ProfessorInactive ProfessorStatus = "inactive"
)

type Professor struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Name         string          `gorm:"type:varchar(150);not null" json:"name"`
	Matricula    *string         `gorm:"type:varchar(50);uniqueIndex" json:"matricula"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Status       ProfessorStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	DepartmentID *uint           `gorm:"index" json:"department_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Professor) TableName() string {
	return "professors"
}

// IsActive reports whether the professor may sign in.
func (p *Professor) IsActive() bool {
	return p.Status == ProfessorActive
}

// DepartmentName returns the department name or an empty string.
func (p *Professor) DepartmentName() string {
	if p.Department == nil {
		return ""
	}
	return p.Department.Name
}

// MatriculaValue returns the matricula or an empty string.
func (p *Professor) MatriculaValue() string {
	if p.Matricula == nil {
		return ""
	}
	return *p.Matricula
}

func (s ProfessorStatus) IsValid() bool {
	return s == ProfessorActive || s == ProfessorInactive
}
