package dto

// CreateClubRequest represents the request body for creating a club.
type CreateClubRequest struct {
	Name        string  `json:"club_name"`
	Description string  `json:"club_description"`
	Creator     string  `json:"creator"`
	BookID      *int64  `json:"book_id,omitempty"`
	ReadTime    *int64  `json:"read_time,omitempty"` // Epoch milliseconds
	IsPrivate   bool    `json:"is_private"`
	Password    *string `json:"password,omitempty"`
}

// SubscribeRequest is the optional body of a subscribe call.
type SubscribeRequest struct {
	Password *string `json:"password"`
}
