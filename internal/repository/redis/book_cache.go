package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkocak/librarian/internal/domain"
)

const keyPrefix = "book:"

// BookCache implements repository.BookCache using Redis. Cache misses are
// reported as a nil book rather than an error so callers fall through to the
// database without branching on error kinds.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache creates a new Redis-backed book cache.
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached book by ID. Returns nil on a cache miss.
func (c *BookCache) Get(ctx context.Context, id string) (*domain.Book, error) {
	key := keyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get book: %w", err)
	}

	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("unmarshal book: %w", err)
	}

	return &book, nil
}

// Set stores a book in Redis with the configured TTL.
func (c *BookCache) Set(ctx context.Context, book *domain.Book) error {
	key := keyPrefix + book.ID

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set book: %w", err)
	}

	return nil
}

// Invalidate removes a book from Redis by ID.
func (c *BookCache) Invalidate(ctx context.Context, id string) error {
	key := keyPrefix + id

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del book: %w", err)
	}

	return nil
}
