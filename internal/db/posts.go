package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshmuccio/pitch-super-app/internal/types"
)

// PostRecord is a stored post row.
type PostRecord struct {
	ID             int64  `json:"id"`
	FounderID      string `json:"founder_id,omitempty"`
	CompanyID      string `json:"company_id,omitempty"`
	PostText       string `json:"post_text"`
	PostURL        string `json:"post_url,omitempty"`
	PostedAt       string `json:"posted_at"`
	TimeConfidence string `json:"time_confidence"`
	HasEmbedding   bool   `json:"has_embedding"`
}

// UpsertPost creates or updates a post keyed by (founder_id, company_id,
// post_url). A nil embedding stores the post without a vector; an existing
// vector is not overwritten by a nil one.
func (db *DB) UpsertPost(ctx context.Context, post types.Post, embedding []float32) error {
	var vector *string
	if len(embedding) > 0 {
		v := vectorLiteral(embedding)
		vector = &v
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO linkedin_posts (founder_id, company_id, post_text, post_url,
		                             posted_at, time_confidence, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (founder_id, company_id, post_url) DO UPDATE SET
		     post_text = EXCLUDED.post_text,
		     posted_at = EXCLUDED.posted_at,
		     time_confidence = EXCLUDED.time_confidence,
		     embedding = COALESCE(EXCLUDED.embedding, linkedin_posts.embedding),
		     updated_at = NOW()`,
		post.FounderID, post.CompanyID, post.PostText, post.PostURL,
		post.PostedAt, post.TimeConfidence, vector,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}
	return nil
}

// ListPostsByCompany retrieves stored posts for a company, newest first.
func (db *DB) ListPostsByCompany(ctx context.Context, companyID string, limit int) ([]PostRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, founder_id, company_id, post_text, post_url,
		        posted_at, time_confidence, embedding IS NOT NULL
		 FROM linkedin_posts
		 WHERE company_id = $1
		 ORDER BY posted_at DESC
		 LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []PostRecord
	for rows.Next() {
		var p PostRecord
		if err := rows.Scan(&p.ID, &p.FounderID, &p.CompanyID, &p.PostText,
			&p.PostURL, &p.PostedAt, &p.TimeConfidence, &p.HasEmbedding); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// vectorLiteral formats an embedding as a pgvector input literal.
func vectorLiteral(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
