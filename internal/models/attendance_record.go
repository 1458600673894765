package models

import (
	"time"
)

type AttendanceStatus string

// Attendance record statuses
const (
	StatusApproved AttendanceStatus = "approved"
	StatusPending  AttendanceStatus = "pending"
	StatusRejected AttendanceStatus = "rejected"
)

type AttendanceRecord struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	ProfessorID   uint             `gorm:"not null;uniqueIndex:idx_attendance_professor_date,priority:1" json:"professor_id"`
	Date          time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_professor_date,priority:2;index" json:"date"`
	RegisteredAt  time.Time        `gorm:"not null" json:"registered_at"`
	Retroactive   bool             `gorm:"not null;default:false" json:"retroactive"`
	Justification string           `gorm:"type:text" json:"justification,omitempty"`
	Status        AttendanceStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Professor *Professor `gorm:"foreignKey:ProfessorID;constraint:OnDelete:RESTRICT" json:"professor,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// IsPending reports whether the record still awaits an administrator decision.
func (r *AttendanceRecord) IsPending() bool {
	return r.Status == StatusPending
}

// IsDecided reports whether the record reached a terminal status.
func (r *AttendanceRecord) IsDecided() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// IsValid reports whether retroactive, status and justification agree.
func (r *AttendanceRecord) IsValid() bool {
	if r.ProfessorID == 0 {
		return false
	}
	if r.Date.IsZero() || r.RegisteredAt.IsZero() {
		return false
	}
	if !r.Status.IsValid() {
		return false
	}
	if r.Retroactive && r.Justification == "" {
		return false
	}
	return true
}

func (s AttendanceStatus) IsValid() bool {
	return s == StatusApproved || s == StatusPending || s == StatusRejected
}

// Decision is an administrator verdict on a retroactive request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the status a decision leads to.
func (d Decision) Status() (AttendanceStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	}
	return "", false
}
