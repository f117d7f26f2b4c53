package repository

import (
	"context"

	"github.com/dkocak/librarian/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns all books, optionally filtered by author or category.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, error)

	// Update modifies an existing book in the store.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// BookFilter narrows the result set of BookRepository.List.
type BookFilter struct {
	AuthorID   *string
	CategoryID *string
	Search     *string
}

// AuthorRepository defines the interface for author persistence operations.
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id string) (*domain.Author, error)
	List(ctx context.Context) ([]domain.Author, error)
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// BookCache defines a read-through cache for individual books.
type BookCache interface {
	// Get returns the cached book, or nil if absent.
	Get(ctx context.Context, id string) (*domain.Book, error)

	// Set stores a book in the cache.
	Set(ctx context.Context, book *domain.Book) error

	// Invalidate removes a book from the cache.
	Invalidate(ctx context.Context, id string) error
}
