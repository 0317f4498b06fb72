package dto

// UserRequest represents the request body for creating or replacing a user.
// Password is ignored on update.
type UserRequest struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Photo      *string `json:"photo,omitempty"`
	Additional *string `json:"additional,omitempty"`
}
