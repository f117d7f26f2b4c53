package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/internal/event"
	"github.com/dkocak/librarian/internal/repository"
	apperrors "github.com/dkocak/librarian/pkg/errors"
)

// CatalogService implements the business logic for books, authors, and categories.
type CatalogService struct {
	bookRepo     repository.BookRepository
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
	cache        repository.BookCache
	producer     *event.Producer
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	bookRepo repository.BookRepository,
	authorRepo repository.AuthorRepository,
	categoryRepo repository.CategoryRepository,
	cache repository.BookCache,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		producer:     producer,
		logger:       logger,
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Title         string
	ISBN          string
	Description   string
	AuthorID      *string
	CategoryID    *string
	PublishedYear int
}

// UpdateBookInput holds the parameters for updating a book. Nil fields are
// left unchanged.
type UpdateBookInput struct {
	Title         *string
	ISBN          *string
	Description   *string
	AuthorID      *string
	CategoryID    *string
	PublishedYear *int
}

// --- Books ---

// CreateBook validates references and inserts a new book.
func (s *CatalogService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.ISBN == "" {
		return nil, apperrors.InvalidInput("isbn is required")
	}

	if input.AuthorID != nil {
		if _, err := s.authorRepo.GetByID(ctx, *input.AuthorID); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("author %s does not exist", *input.AuthorID))
		}
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("category %s does not exist", *input.CategoryID))
		}
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:            uuid.New().String(),
		Title:         input.Title,
		ISBN:          input.ISBN,
		Description:   input.Description,
		AuthorID:      input.AuthorID,
		CategoryID:    input.CategoryID,
		PublishedYear: input.PublishedYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// GetBook retrieves a book by ID, consulting the cache first.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		// A broken cache should not take reads down.
		s.logger.WarnContext(ctx, "book cache read failed",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	} else if cached != nil {
		return cached, nil
	}

	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	if err := s.cache.Set(ctx, book); err != nil {
		s.logger.WarnContext(ctx, "book cache write failed",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	return book, nil
}

// ListBooks returns books matching the filter.
func (s *CatalogService) ListBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	books, err := s.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook applies partial changes to an existing book.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		book.Title = *input.Title
	}
	if input.ISBN != nil {
		if *input.ISBN == "" {
			return nil, apperrors.InvalidInput("isbn cannot be empty")
		}
		book.ISBN = *input.ISBN
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.AuthorID != nil {
		if _, err := s.authorRepo.GetByID(ctx, *input.AuthorID); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("author %s does not exist", *input.AuthorID))
		}
		book.AuthorID = input.AuthorID
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("category %s does not exist", *input.CategoryID))
		}
		book.CategoryID = input.CategoryID
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "book cache invalidation failed",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishBookUpdated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	return book, nil
}

// DeleteBook removes a book and drops its cache entry.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "book cache invalidation failed",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishBookDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted", slog.String("book_id", id))

	return nil
}

// --- Authors ---

// CreateAuthor inserts a new author.
func (s *CatalogService) CreateAuthor(ctx context.Context, name, bio string) (*domain.Author, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	author := &domain.Author{
		ID:        uuid.New().String(),
		Name:      name,
		Bio:       bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	return author, nil
}

// GetAuthor retrieves an author by ID.
func (s *CatalogService) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// ListAuthors returns all authors.
func (s *CatalogService) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	authors, err := s.authorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// UpdateAuthor applies partial changes to an existing author.
func (s *CatalogService) UpdateAuthor(ctx context.Context, id string, name, bio *string) (*domain.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}

	if name != nil {
		if *name == "" {
			return nil, apperrors.InvalidInput("name cannot be empty")
		}
		author.Name = *name
	}
	if bio != nil {
		author.Bio = *bio
	}

	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	return author, nil
}

// DeleteAuthor removes an author by ID.
func (s *CatalogService) DeleteAuthor(ctx context.Context, id string) error {
	if err := s.authorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return nil
}

// --- Categories ---

// CreateCategory inserts a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// GetCategory retrieves a category by ID.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory renames an existing category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes a category by ID.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
