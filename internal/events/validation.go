package events

import "fmt"

// Validate checks that an event carries the identifiers its type requires.
func Validate(event Event) error {
	if event.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}

	switch event.Type {
	case TypeUserCreated:
		if event.UserID <= 0 {
			return fmt.Errorf("user_id is required")
		}
	case TypeClubCreated:
		if event.ClubID <= 0 {
			return fmt.Errorf("club_id is required")
		}
		if event.BookID < 0 {
			return fmt.Errorf("book_id must not be negative")
		}
	case TypeClubSubscribed:
		if event.UserID == 0 {
			return fmt.Errorf("user_id is required")
		}
		if event.ClubID <= 0 {
			return fmt.Errorf("club_id is required")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	return nil
}
