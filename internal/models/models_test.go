package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		total      int64
		wantOffset int
		wantPages  int
	}{
		{name: "second page", page: 2, size: 10, total: 25, wantOffset: 10, wantPages: 3},
		{name: "exact fit", page: 1, size: 10, total: 20, wantOffset: 0, wantPages: 2},
		{name: "empty", page: 1, size: 10, total: 0, wantOffset: 0, wantPages: 0},
		{name: "clamped page", page: -3, size: 5, total: 6, wantOffset: 0, wantPages: 2},
		{name: "default size", page: 3, size: 0, total: 11, wantOffset: 20, wantPages: 2},
		{name: "size capped", page: 2, size: 5000, total: 250, wantOffset: 100, wantPages: 3},
		{name: "page capped", page: math.MaxInt, size: 10, total: 5, wantOffset: (MaxPage - 1) * 10, wantPages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantPages, p.TotalPages(tt.total))
		})
	}
}

func TestDecisionStatus(t *testing.T) {
	s, ok := DecisionApprove.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)

	s, ok = DecisionReject.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusRejected, s)

	_, ok = Decision("maybe").Status()
	assert.False(t, ok)
}

func TestAttendanceRecordIsValid(t *testing.T) {
	now := time.Now()
	valid := AttendanceRecord{ProfessorID: 1, Date: now, RegisteredAt: now, Status: StatusApproved}
	assert.True(t, valid.IsValid())

	retro := valid
	retro.Retroactive = true
	retro.Status = StatusPending
	assert.False(t, retro.IsValid(), "retroactive record needs a justification")

	retro.Justification = "forgot to check in"
	assert.True(t, retro.IsValid())

	bad := valid
	bad.Status = "archived"
	assert.False(t, bad.IsValid())

	assert.True(t, retro.IsPending())
	assert.False(t, retro.IsDecided())
}
