package auth

import (
	"attendance-service/internal/apperr"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	ID    uint   `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) IsProfessor() bool {
	return i.Role == RoleProfessor
}

// Require returns ErrForbidden unless the identity holds role.
func (i Identity) Require(role Role) error {
	if i.ID == 0 || i.Role != role {
		return apperr.ErrForbidden
	}
	return nil
}

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleProfessor
}
