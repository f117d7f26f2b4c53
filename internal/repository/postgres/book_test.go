package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/internal/repository"
	apperrors "github.com/dkocak/librarian/pkg/errors"
)

func newBookTestFixture(t *testing.T) (*BookRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewBookRepository(mock)
	return repo, mock
}

func sampleBook() *domain.Book {
	now := time.Now().UTC().Truncate(time.Microsecond)
	authorID := "a-1"
	categoryID := "c-1"
	return &domain.Book{
		ID:            "b-1234",
		Title:         "The Go Programming Language",
		ISBN:          "978-0134190440",
		Description:   "A reference for working programmers.",
		AuthorID:      &authorID,
		CategoryID:    &categoryID,
		PublishedYear: 2015,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func bookCols() []string {
	return []string{
		"id", "title", "isbn", "description", "author_id",
		"category_id", "published_year", "created_at", "updated_at",
	}
}

func bookRow(b *domain.Book) *pgxmock.Rows {
	return pgxmock.NewRows(bookCols()).AddRow(
		b.ID, b.Title, b.ISBN, b.Description, b.AuthorID,
		b.CategoryID, b.PublishedYear, b.CreatedAt, b.UpdatedAt,
	)
}

func TestBookRepository_Create_Success(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectExec("INSERT INTO books").
		WithArgs(
			b.ID, b.Title, b.ISBN, b.Description, b.AuthorID,
			b.CategoryID, b.PublishedYear, b.CreatedAt, b.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Create_DuplicateISBN(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectExec("INSERT INTO books").
		WithArgs(
			b.ID, b.Title, b.ISBN, b.Description, b.AuthorID,
			b.CategoryID, b.PublishedYear, b.CreatedAt, b.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), b)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID_Success(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectQuery("SELECT (.+) FROM books").
		WithArgs(b.ID).
		WillReturnRows(bookRow(b))

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM books").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(bookCols()))

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_List_NoFilter(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectQuery("SELECT (.+) FROM books").
		WillReturnRows(bookRow(b))

	books, err := repo.List(context.Background(), repository.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b.ID, books[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_List_Empty(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM books").
		WillReturnRows(pgxmock.NewRows(bookCols()))

	books, err := repo.List(context.Background(), repository.BookFilter{})
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_List_ByAuthorAndSearch(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()
	authorID := "a-1"
	search := "go"

	mock.ExpectQuery("SELECT (.+) FROM books WHERE author_id").
		WithArgs(authorID, "%go%").
		WillReturnRows(bookRow(b))

	books, err := repo.List(context.Background(), repository.BookFilter{
		AuthorID: &authorID,
		Search:   &search,
	})
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Update_Success(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectExec("UPDATE books").
		WithArgs(
			b.Title, b.ISBN, b.Description, b.AuthorID, b.CategoryID,
			b.PublishedYear, pgxmock.AnyArg(), b.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Update_NotFound(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectExec("UPDATE books").
		WithArgs(
			b.Title, b.ISBN, b.Description, b.AuthorID, b.CategoryID,
			b.PublishedYear, pgxmock.AnyArg(), b.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), b)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Delete_Success(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM books").
		WithArgs("b-1234").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "b-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newBookTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM books").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
