// Package model defines domain entities for the application.
package model

// Role is the platform role of a user.
type Role string

const (
	RoleStudent       Role = "Student"
	RoleLibrarian     Role = "Librarian"
	RoleAdministrator Role = "Administrator"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleLibrarian, RoleAdministrator:
		return true
	}
	return false
}

// Default list names seeded for every new user.
const (
	ListPending  = "Pending"
	ListFinished = "Finished"
)

// DefaultListNames returns the lists created alongside a user, in creation order.
func DefaultListNames() []string {
	return []string{ListPending, ListFinished}
}

// User represents a platform member.
type User struct {
	ID           int64   `json:"user_id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // Never serialize
	Role         Role    `json:"role"`
	Photo        *string `json:"photo,omitempty"`
	Additional   *string `json:"additional,omitempty"`
}

// Replace overwrites every mutable profile field with the values from other.
// Identity and password are left untouched.
func (u *User) Replace(other *User) {
	u.FirstName = other.FirstName
	u.LastName = other.LastName
	u.Email = other.Email
	u.Role = other.Role
	u.Photo = other.Photo
	u.Additional = other.Additional
}

// UserList is a named reading list owned by a user.
type UserList struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"list_name"`
	Description string `json:"list_description"`
}
