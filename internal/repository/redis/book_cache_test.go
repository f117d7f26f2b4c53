package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkocak/librarian/internal/domain"
)

func setupTestCache(t *testing.T) (*BookCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewBookCache(client, time.Hour)
	return cache, mr
}

func cachedBook() *domain.Book {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Book{
		ID:            "b-1",
		Title:         "Concurrency in Go",
		ISBN:          "978-1491941195",
		PublishedYear: 2017,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestBookCache_Get_Hit(t *testing.T) {
	cache, mr := setupTestCache(t)

	book := cachedBook()
	data, err := json.Marshal(book)
	require.NoError(t, err)
	require.NoError(t, mr.Set(keyPrefix+book.ID, string(data)))

	got, err := cache.Get(context.Background(), book.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, book, got)
}

func TestBookCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	got, err := cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBookCache_Get_CorruptPayload(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, mr.Set(keyPrefix+"b-1", "not-json"))

	got, err := cache.Get(context.Background(), "b-1")
	assert.Nil(t, got)
	assert.Error(t, err)
}

func TestBookCache_Set_AppliesTTL(t *testing.T) {
	cache, mr := setupTestCache(t)

	book := cachedBook()
	require.NoError(t, cache.Set(context.Background(), book))

	assert.True(t, mr.Exists(keyPrefix+book.ID))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+book.ID))
}

func TestBookCache_Invalidate(t *testing.T) {
	cache, mr := setupTestCache(t)

	book := cachedBook()
	require.NoError(t, cache.Set(context.Background(), book))
	require.NoError(t, cache.Invalidate(context.Background(), book.ID))

	assert.False(t, mr.Exists(keyPrefix + book.ID))
}

func TestBookCache_Invalidate_MissingKey(t *testing.T) {
	cache, _ := setupTestCache(t)

	assert.NoError(t, cache.Invalidate(context.Background(), "missing"))
}
