package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"messenger-funnel/internal/ai"
	"messenger-funnel/internal/database"
	"messenger-funnel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockCompleter struct {
	response string
	err      error
	calls    int
}

func (m *mockCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	m.calls++
	return m.response, m.err
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []models.AdProduct{
		{AdID: "ad-42", Position: 1, Name: "Leather Watch", Price: "Rs. 4500", ImageURLs: `["https://cdn.example.com/watch1.jpg","https://cdn.example.com/watch2.jpg"]`},
		{AdID: "ad-42", Position: 2, Name: "Steel Watch", Price: "Rs. 6500", ImageURLs: `["https://cdn.example.com/steel.jpg"]`},
		{AdID: "ad-42", Position: 3, Name: "Watch Strap", Price: "Rs. 900", ImageURLs: `["ftp://bad.example.com/strap.jpg"]`},
		{AdID: "ad-7", Position: 1, Name: "Canvas Bag", Price: "Rs. 2500", ImageURLs: `["https://cdn.example.com/bag.jpg"]`},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}
}

func TestByAd(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	resolver := NewResolver(db, &mockCompleter{})

	result := resolver.ByAd("ad-42")

	assert.Equal(t, "Leather Watch - Rs. 4500\nSteel Watch - Rs. 6500\nWatch Strap - Rs. 900", result.Listing)
	assert.Equal(t, []string{
		"https://cdn.example.com/watch1.jpg",
		"https://cdn.example.com/watch2.jpg",
		"https://cdn.example.com/steel.jpg",
	}, result.ImageURLs, "non-http urls are dropped, slot order kept")
	assert.False(t, result.Empty())
}

func TestByAdUnknown(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	resolver := NewResolver(db, &mockCompleter{})

	result := resolver.ByAd("ad-999")
	assert.True(t, result.Empty())
	assert.Empty(t, result.ImageURLs)
}

func TestByAdEmptyID(t *testing.T) {
	resolver := NewResolver(openTestDB(t), &mockCompleter{})
	assert.True(t, resolver.ByAd("").Empty())
}

func TestByQuery(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	completer := &mockCompleter{response: "watch, strap"}
	resolver := NewResolver(db, completer)

	result := resolver.ByQuery(context.Background(), "do you have any watches?")

	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, result.Listing, "Leather Watch")
	assert.Contains(t, result.Listing, "Steel Watch")
	assert.NotContains(t, result.Listing, "Canvas Bag")
	assert.LessOrEqual(t, len(strings.Split(result.Listing, "\n")), 3)
	assert.LessOrEqual(t, len(result.ImageURLs), 3)
}

func TestByQueryNoMatch(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	resolver := NewResolver(db, &mockCompleter{response: "shoes"})

	result := resolver.ByQuery(context.Background(), "got any shoes?")
	assert.True(t, result.Empty())
}

func TestByQueryFallsBackToQueryWords(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	resolver := NewResolver(db, &mockCompleter{err: assert.AnError})

	result := resolver.ByQuery(context.Background(), "leather watch please")
	assert.Contains(t, result.Listing, "Leather Watch")
}
