//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// These tests require a running PostgreSQL database with the pgvector
// extension and the linkedin_posts table.
// Set TEST_DATABASE_URL environment variable to run them.

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, _ = db.pool.Exec(context.Background(),
		"DELETE FROM linkedin_posts WHERE founder_id LIKE 'test-%'")

	return db
}

func TestIntegration_UpsertPost(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	post := types.Post{
		FounderID:      "test-founder-1",
		CompanyID:      "test-company-1",
		PostText:       "We shipped something big today.",
		PostURL:        "https://www.linkedin.com/feed/update/urn:li:activity:test1",
		PostedAt:       "2024-06-01T00:00:00Z",
		TimeConfidence: types.TimeConfidenceAbsolute,
	}

	if err := db.UpsertPost(ctx, post, nil); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	// Upserting the same key updates instead of duplicating.
	post.PostText = "We shipped something even bigger today."
	if err := db.UpsertPost(ctx, post, []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("UpsertPost (update) failed: %v", err)
	}

	posts, err := db.ListPostsByCompany(ctx, "test-company-1", 10)
	if err != nil {
		t.Fatalf("ListPostsByCompany failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if posts[0].PostText != "We shipped something even bigger today." {
		t.Errorf("Expected updated text, got %q", posts[0].PostText)
	}
	if !posts[0].HasEmbedding {
		t.Error("Expected embedding to be stored")
	}
}
