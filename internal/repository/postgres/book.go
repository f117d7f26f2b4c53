package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/internal/repository"
	"github.com/dkocak/librarian/pkg/database"
	apperrors "github.com/dkocak/librarian/pkg/errors"
)

// bookColumns is the standard SELECT column list for books.
const bookColumns = `id, title, isbn, description, author_id, category_id, published_year, created_at, updated_at`

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, isbn, description, author_id, category_id, published_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.ISBN,
		b.Description,
		b.AuthorID,
		b.CategoryID,
		b.PublishedYear,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "isbn", b.ISBN)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)

	var b domain.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.Description,
		&b.AuthorID,
		&b.CategoryID,
		&b.PublishedYear,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns books matching the given filter, newest first.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY created_at DESC`, bookColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.ISBN,
			&b.Description,
			&b.AuthorID,
			&b.CategoryID,
			&b.PublishedYear,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

// Update modifies an existing book in the database.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, isbn = $2, description = $3, author_id = $4, category_id = $5,
		    published_year = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		b.Title,
		b.ISBN,
		b.Description,
		b.AuthorID,
		b.CategoryID,
		b.PublishedYear,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "isbn", b.ISBN)
		}
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book from the database by its ID.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}
