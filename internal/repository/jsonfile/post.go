package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/metrics"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

var _ repository.PostRepository = (*Store)(nil)

// ListPosts returns every post in file order.
func (s *Store) ListPosts(ctx context.Context) (posts []model.Post, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "list_posts", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return s.readPosts()
}

// GetPostByID returns the post with the given id or apperror.ErrNotFound.
func (s *Store) GetPostByID(ctx context.Context, id int64) (post *model.Post, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_post", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	posts, err := s.readPosts()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}

	return nil, apperror.NotFound("post", id)
}

// CreatePost appends a post with id = max+1 and writes it back into post.ID.
func (s *Store) CreatePost(ctx context.Context, post *model.Post) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "create_post", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	posts, err := s.readPosts()
	if err != nil {
		return err
	}

	post.ID = nextID(posts, func(p model.Post) int64 { return p.ID })
	posts = append(posts, *post)

	if err := s.writePosts(posts); err != nil {
		return fmt.Errorf("jsonfile: creating post: %w", err)
	}

	return nil
}

// UpdatePost replaces the stored record that has post.ID.
func (s *Store) UpdatePost(ctx context.Context, post *model.Post) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "update_post", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	posts, err := s.readPosts()
	if err != nil {
		return err
	}

	idx := -1
	for i := range posts {
		if posts[i].ID == post.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NotFound("post", post.ID)
	}
	posts[idx] = *post

	if err := s.writePosts(posts); err != nil {
		return fmt.Errorf("jsonfile: updating post %d: %w", post.ID, err)
	}

	return nil
}

// DeletePost removes the post with the given id.
func (s *Store) DeletePost(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "delete_post", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	posts, err := s.readPosts()
	if err != nil {
		return err
	}

	kept := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return apperror.NotFound("post", id)
	}

	if err := s.writePosts(kept); err != nil {
		return fmt.Errorf("jsonfile: deleting post %d: %w", id, err)
	}

	return nil
}
