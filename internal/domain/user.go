package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCustomer:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage vehicles and drive
// rental status transitions.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID            int32     `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// Actor identifies the authenticated caller of an operation. It is an
// explicit parameter so authorization is a testable precondition, not
// ambient middleware behavior.
type Actor struct {
	UserID int32
	Role   Role
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}
