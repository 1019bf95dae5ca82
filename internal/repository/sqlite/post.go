package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/metrics"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// ListPosts returns every post ordered by id, which is creation order.
func (db *DB) ListPosts(ctx context.Context) (posts []model.Post, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "list_posts", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, content, author_id, author_username FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts = []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPostByID retrieves a post by id.
func (db *DB) GetPostByID(ctx context.Context, id int64) (post *model.Post, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_post", start, err) }(time.Now())

	var p model.Post
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, title, content, author_id, author_username FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}

	return &p, nil
}

// CreatePost inserts a post with id = max+1 and sets post.ID.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "create_post", start, err) }(time.Now())

	return db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := nextID(ctx, tx, "posts")
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO posts (id, title, content, author_id, author_username)
			 VALUES (?, ?, ?, ?, ?)`,
			id, post.Title, post.Content, post.AuthorID, post.AuthorUsername,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting post: %w", err)
		}

		post.ID = id
		return nil
	})
}

// UpdatePost saves title and content for post.ID. Authorship never changes.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "update_post", start, err) }(time.Now())

	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ?`,
		post.Title, post.Content, post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// DeletePost removes a post by id.
func (db *DB) DeletePost(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "delete_post", start, err) }(time.Now())

	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
