package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkocak/librarian/internal/domain"
	pkgkafka "github.com/dkocak/librarian/pkg/kafka"
)

// Kafka topic constants for catalog domain events.
const (
	TopicUserRegistered = "librarian.user.registered"
	TopicBookCreated    = "librarian.book.created"
	TopicBookUpdated    = "librarian.book.updated"
	TopicBookDeleted    = "librarian.book.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypeBook = "book"
)

// Source identifier for events originating from this service.
const SourceCatalogService = "librarian-catalog"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BookData is the payload for book.created and book.updated events.
type BookData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	ISBN       string  `json:"isbn"`
	AuthorID   *string `json:"author_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

// BookDeletedData is the payload for a book.deleted event.
type BookDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	return p.publishBookEvent(ctx, TopicBookCreated, book)
}

// PublishBookUpdated publishes a book.updated event.
func (p *Producer) PublishBookUpdated(ctx context.Context, book *domain.Book) error {
	return p.publishBookEvent(ctx, TopicBookUpdated, book)
}

// PublishBookDeleted publishes a book.deleted event.
func (p *Producer) PublishBookDeleted(ctx context.Context, bookID string) error {
	event, err := pkgkafka.NewEvent(TopicBookDeleted, bookID, AggregateTypeBook, SourceCatalogService, BookDeletedData{ID: bookID})
	if err != nil {
		return fmt.Errorf("create book.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookDeleted, event); err != nil {
		return fmt.Errorf("publish book.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.deleted event", slog.String("book_id", bookID))

	return nil
}

func (p *Producer) publishBookEvent(ctx context.Context, topic string, book *domain.Book) error {
	data := BookData{
		ID:         book.ID,
		Title:      book.Title,
		ISBN:       book.ISBN,
		AuthorID:   book.AuthorID,
		CategoryID: book.CategoryID,
	}

	event, err := pkgkafka.NewEvent(topic, book.ID, AggregateTypeBook, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published book event",
		slog.String("topic", topic),
		slog.String("book_id", book.ID),
	)

	return nil
}
