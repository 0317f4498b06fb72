package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lectio/lectio/internal/model"
)

// Common errors for club repository operations.
var (
	ErrClubNotFound      = errors.New("club not found")
	ErrAlreadySubscribed = errors.New("user already subscribed to club")
	ErrInvalidReading    = errors.New("book and read time must be set together")
)

const clubColumns = `club_id, club_name, club_description, creator, book_id, read_time, is_private, password, subscribers`

// CreateClub inserts a new club with zero subscribers.
func (r *Repository) CreateClub(ctx context.Context, club *model.Club) error {
	query := `
		INSERT INTO clubs (club_name, club_description, creator, book_id, read_time, is_private, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING club_id, subscribers
	`

	var password *string
	if club.PasswordHash != "" {
		password = &club.PasswordHash
	}

	err := r.pool.QueryRow(ctx, query,
		club.Name,
		club.Description,
		club.Creator,
		club.BookID,
		club.ReadTime,
		club.IsPrivate,
		password,
	).Scan(&club.ID, &club.Subscribers)

	if err != nil {
		if isCheckViolation(err) {
			return ErrInvalidReading
		}
		return fmt.Errorf("failed to create club: %w", err)
	}

	return nil
}

// GetClubByID retrieves a club by its ID.
func (r *Repository) GetClubByID(ctx context.Context, id int64) (*model.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE club_id = $1`

	club, err := scanClub(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club by ID: %w", err)
	}

	return club, nil
}

// ListClubs retrieves every club in insertion order.
func (r *Repository) ListClubs(ctx context.Context) ([]*model.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY club_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*model.Club
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}

	return clubs, nil
}

// Subscribe records a subscription and increments the club's subscriber
// counter in one transaction. It returns the new subscriber count.
// A repeated subscription fails with ErrAlreadySubscribed and leaves the
// counter unchanged.
func (r *Repository) Subscribe(ctx context.Context, sub model.ClubSubscription) (int64, error) {
	var subscribers int64

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO club_subscriptions (user_id, club_id)
			VALUES ($1, $2)
		`, sub.UserID, sub.ClubID); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			UPDATE clubs SET subscribers = subscribers + 1
			WHERE club_id = $1
			RETURNING subscribers
		`, sub.ClubID).Scan(&subscribers)
	})

	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, ErrAlreadySubscribed
		case isForeignKeyViolation(err), errors.Is(err, pgx.ErrNoRows):
			return 0, ErrClubNotFound
		}
		return 0, fmt.Errorf("failed to subscribe: %w", err)
	}

	return subscribers, nil
}

// scanClub scans a single row into a Club model.
func scanClub(row pgx.Row) (*model.Club, error) {
	var club model.Club
	var password *string
	err := row.Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.Creator,
		&club.BookID,
		&club.ReadTime,
		&club.IsPrivate,
		&password,
		&club.Subscribers,
	)
	if password != nil {
		club.PasswordHash = *password
	}
	return &club, err
}
