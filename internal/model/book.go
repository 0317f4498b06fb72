// Package model defines domain entities for the application.
package model

// Book represents a catalogued book. Books are immutable once created.
type Book struct {
	ID        int64    `json:"book_id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Publisher string   `json:"publisher"`
	Pages     int      `json:"pages"`
	ISBN      string   `json:"isbn"`
	Genres    []string `json:"genres"`
	Synopsis  string   `json:"synopsis"`
}

// CachedBook represents book data stored in Redis cache.
type CachedBook struct {
	Title     string   `json:"t"`
	Author    string   `json:"a"`
	Publisher string   `json:"p,omitempty"`
	Pages     int      `json:"n,omitempty"`
	ISBN      string   `json:"i,omitempty"`
	Genres    []string `json:"g,omitempty"`
	Synopsis  string   `json:"s,omitempty"`
}

// ToBook converts CachedBook to the Book domain model.
func (c *CachedBook) ToBook(id int64) *Book {
	genres := c.Genres
	if genres == nil {
		genres = []string{}
	}
	return &Book{
		ID:        id,
		Title:     c.Title,
		Author:    c.Author,
		Publisher: c.Publisher,
		Pages:     c.Pages,
		ISBN:      c.ISBN,
		Genres:    genres,
		Synopsis:  c.Synopsis,
	}
}

// ToCachedBook converts Book to its cached form.
func (b *Book) ToCachedBook() *CachedBook {
	return &CachedBook{
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		Pages:     b.Pages,
		ISBN:      b.ISBN,
		Genres:    b.Genres,
		Synopsis:  b.Synopsis,
	}
}
