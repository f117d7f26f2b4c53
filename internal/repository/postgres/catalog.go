package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/pkg/database"
	apperrors "github.com/dkocak/librarian/pkg/errors"
)

// AuthorRepository implements repository.AuthorRepository using PostgreSQL.
type AuthorRepository struct {
	pool database.DBTX
}

// NewAuthorRepository creates a new PostgreSQL-backed author repository.
func NewAuthorRepository(pool database.DBTX) *AuthorRepository {
	return &AuthorRepository{pool: pool}
}

// Create inserts a new author into the database.
func (r *AuthorRepository) Create(ctx context.Context, a *domain.Author) error {
	query := `
		INSERT INTO authors (id, name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Bio, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}

	return nil
}

// GetByID retrieves an author by their ID.
func (r *AuthorRepository) GetByID(ctx context.Context, id string) (*domain.Author, error) {
	query := `SELECT id, name, bio, created_at, updated_at FROM authors WHERE id = $1`

	var a domain.Author
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan author: %w", err)
	}

	return &a, nil
}

// List returns all authors ordered by name.
func (r *AuthorRepository) List(ctx context.Context) ([]domain.Author, error) {
	query := `SELECT id, name, bio, created_at, updated_at FROM authors ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan author row: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author rows: %w", err)
	}

	if authors == nil {
		authors = []domain.Author{}
	}

	return authors, nil
}

// Update modifies an existing author in the database.
func (r *AuthorRepository) Update(ctx context.Context, a *domain.Author) error {
	a.UpdatedAt = time.Now().UTC()

	query := `UPDATE authors SET name = $1, bio = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, a.Name, a.Bio, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", a.ID)
	}

	return nil
}

// Delete removes an author from the database by their ID.
func (r *AuthorRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM authors WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", id)
	}

	return nil
}

// --- Category Repository ---

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category into the database.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`

	var c domain.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// Update modifies an existing category in the database.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()

	query := `UPDATE categories SET name = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, c.Name, c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes a category from the database by its ID.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}
