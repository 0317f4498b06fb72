package model

// Club represents a reading club.
type Club struct {
	ID           int64  `json:"club_id"`
	Name         string `json:"club_name"`
	Description  string `json:"club_description"`
	Creator      string `json:"creator"`
	BookID       *int64 `json:"book_id"`
	ReadTime     *int64 `json:"read_time"` // Epoch milliseconds
	IsPrivate    bool   `json:"is_private"`
	PasswordHash string `json:"-"` // Never serialize
	Subscribers  int64  `json:"subscribers"`
}

// HasReading reports whether the club has both a book and a read time set.
func (c *Club) HasReading() bool {
	return c.BookID != nil && c.ReadTime != nil
}

// ClubSubscription records that a user subscribed to a club.
type ClubSubscription struct {
	UserID int64 `json:"user_id"`
	ClubID int64 `json:"club_id"`
}
