// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package bulletin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univera/portal/pkg/pagination"
)

// PostgresPostRepository implements PostRepository using pgx.
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPostRepository creates a PostgreSQL-backed repository.
func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

/*
List returns the page of posts visible to role, newest first.

Parameters:
  - ctx: context.Context
  - role: string (backend role literal)
  - params: pagination.Params

Returns:
  - []Post: The requested page
  - int: Total count of visible posts
  - error: Database errors
*/
func (repository *PostgresPostRepository) List(ctx context.Context, role string, params pagination.Params) ([]Post, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM directory.bulletin_post
		WHERE audience = 'all' OR audience = $1`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_bulletin_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, title, body, author, audience, posted_at
		FROM directory.bulletin_post
		WHERE audience = 'all' OR audience = $1
		ORDER BY posted_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, listQuery, role, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_bulletin_repo_list_failed: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0, params.Limit)
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.Author, &post.Audience, &post.PostedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres_bulletin_repo_scan_failed: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_bulletin_repo_rows_failed: %w", err)
	}

	return posts, total, nil
}

/*
Create persists a new announcement.

Parameters:
  - ctx: context.Context
  - post: *Post

Returns:
  - error: Database errors
*/
func (repository *PostgresPostRepository) Create(ctx context.Context, post *Post) error {
	const query = `
		INSERT INTO directory.bulletin_post (id, title, body, author, audience, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if post.PostedAt.IsZero() {
		post.PostedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Body,
		post.Author,
		post.Audience,
		post.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_bulletin_repo_create_failed: %w", err)
	}

	return nil
}
