package sync_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/our-cpg/planogram-backend/internal/database"
	"github.com/our-cpg/planogram-backend/internal/logger"
	"github.com/our-cpg/planogram-backend/internal/services/shopify"
)

var testLogger = logger.New("error")

// testDB opens a fresh in-memory database with the full schema applied.
// Shared cache keeps the database alive across pooled connections.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "sqlite://file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := database.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

// fakeShop serves a canned admin API from an httptest server.
func fakeShop(t *testing.T, handler http.HandlerFunc) *shopify.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := shopify.NewClient("fake-shop", "shpat_fake", testLogger)
	client.BaseURL = srv.URL
	client.PageDelay = 0
	return client
}
