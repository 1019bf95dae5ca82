package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/repository"
)

// PostService handles business logic for posts.
//
// Mutating methods take the already-authenticated actor (see
// AccountService.ValidateUser). The order of checks is fixed:
// the post must exist (404), then the actor must own it (403), then the
// input must be valid (400), and only then is anything written.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
	}
}

// List returns every post in storage order.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing posts: %w", err)
	}
	return posts, nil
}

// Create saves a new post authored by author. Title and content are required.
// The author's username is copied onto the post and never rewritten.
func (s *PostService) Create(ctx context.Context, author *model.User, title, content string) (*model.Post, error) {
	if err := requireFields(field{"title", title}, field{"content", content}); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:          title,
		Content:        content,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("service: creating post: %w", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "author_id", author.ID)
	return post, nil
}

// Update changes title and/or content of a post the actor owns. An empty
// value leaves that field unchanged.
func (s *PostService) Update(ctx context.Context, actor *model.User, id int64, title, content string) (*model.Post, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		post.Title = title
	}
	if content != "" {
		post.Content = content
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("service: updating post %d: %w", id, err)
	}

	s.logger.Info("post updated", "post_id", post.ID, "author_id", actor.ID)
	return post, nil
}

// Delete removes a post the actor owns.
func (s *PostService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("service: deleting post %d: %w", id, err)
	}

	s.logger.Info("post deleted", "post_id", id, "author_id", actor.ID)
	return nil
}

// owned loads post id and checks that actor wrote it.
func (s *PostService) owned(ctx context.Context, actor *model.User, id int64) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.OwnedBy(actor.ID) {
		s.logger.Warn("post mutation forbidden", "post_id", id, "actor_id", actor.ID, "author_id", post.AuthorID)
		return nil, apperror.Forbidden("You can only modify your own posts")
	}

	return post, nil
}
