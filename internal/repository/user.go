package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lectio/lectio/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `user_id, first_name, last_name, email, password, role, photo, additional`

// CreateUserWithLists inserts a user together with its default reading lists
// in a single transaction. Either all rows are written or none are.
func (r *Repository) CreateUserWithLists(ctx context.Context, user *model.User, lists []model.UserList) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, email, password, role, photo, additional)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING user_id
		`,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PasswordHash,
			string(user.Role),
			user.Photo,
			user.Additional,
		).Scan(&user.ID)
		if err != nil {
			return err
		}

		for i := range lists {
			lists[i].UserID = user.ID
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_lists (user_id, list_name, list_description)
				VALUES ($1, $2, $3)
			`, user.ID, lists[i].Name, lists[i].Description); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListUsers retrieves every user in insertion order.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser overwrites the mutable profile fields of an existing user.
// The stored password is not touched.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			first_name = $2,
			last_name = $3,
			email = $4,
			role = $5,
			photo = $6,
			additional = $7
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		string(user.Role),
		user.Photo,
		user.Additional,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user by ID. The user's reading lists are kept.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListUserLists retrieves the reading lists owned by a user.
func (r *Repository) ListUserLists(ctx context.Context, userID int64) ([]*model.UserList, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, list_name, list_description
		FROM user_lists
		WHERE user_id = $1
		ORDER BY list_name DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user lists: %w", err)
	}
	defer rows.Close()

	var lists []*model.UserList
	for rows.Next() {
		var list model.UserList
		if err := rows.Scan(&list.UserID, &list.Name, &list.Description); err != nil {
			return nil, fmt.Errorf("failed to scan user list: %w", err)
		}
		lists = append(lists, &list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user lists: %w", err)
	}

	return lists, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Photo,
		&user.Additional,
	)
	user.Role = model.Role(role)
	return &user, err
}
