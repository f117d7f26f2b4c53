package domain

import (
	"time"
)

// Book represents a catalog entry for a single title.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ISBN          string    `json:"isbn"`
	Description   string    `json:"description,omitempty"`
	AuthorID      *string   `json:"author_id,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Author represents a book author.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category represents a catalog category label.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
