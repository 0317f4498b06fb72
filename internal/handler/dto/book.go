package dto

import (
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/pagination"
)

// CreateBookRequest represents the request body for creating a book.
// A client-supplied book_id is ignored.
type CreateBookRequest struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Publisher string   `json:"publisher"`
	Pages     int      `json:"pages"`
	ISBN      string   `json:"isbn"`
	Genres    []string `json:"genres"`
	Synopsis  string   `json:"synopsis"`
}

// BookListResponse represents one page of books.
type BookListResponse struct {
	NumBooks int64         `json:"numBooks"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
	Books    []*model.Book `json:"books"`
}

// ToBookListResponse converts a pagination envelope to BookListResponse.
func ToBookListResponse(env *pagination.Envelope[*model.Book]) *BookListResponse {
	return &BookListResponse{
		NumBooks: env.NumRecords,
		Page:     env.Page,
		Size:     env.Size,
		Books:    env.Records,
	}
}
