package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/lectio/lectio/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound = errors.New("book not found")
)

const bookColumns = `book_id, title, author, publisher, pages, isbn, genres, synopsis`

// CreateBook inserts a new book and sets its server-assigned ID.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (title, author, publisher, pages, isbn, genres, synopsis)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING book_id
	`

	genres := book.Genres
	if genres == nil {
		genres = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.Publisher,
		book.Pages,
		book.ISBN,
		pq.Array(genres),
		book.Synopsis,
	).Scan(&book.ID)

	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	book.Genres = genres
	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE book_id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// ListBooks retrieves up to limit books starting at position start,
// in insertion order.
func (r *Repository) ListBooks(ctx context.Context, start, limit int) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY book_id OFFSET $1 LIMIT $2`
	return r.queryBooks(ctx, query, start, limit)
}

// ListAllBooks retrieves every book in insertion order.
func (r *Repository) ListAllBooks(ctx context.Context) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY book_id`
	return r.queryBooks(ctx, query)
}

// CountBooks returns the total number of books.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (r *Repository) queryBooks(ctx context.Context, query string, args ...any) ([]*model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// scanBook scans a single row into a Book model.
func scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.Pages,
		&book.ISBN,
		&book.Genres,
		&book.Synopsis,
	)
	if book.Genres == nil {
		book.Genres = []string{}
	}
	return &book, err
}
