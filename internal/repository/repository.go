package repository

import (
	"context"

	"github.com/sakif/postboard/internal/model"
)

// UserRepository persists the user collection.
//
// CreateUser assigns the id (max existing + 1) and must reject a username that
// is already taken with apperror.ErrConflict, atomically with the insert.
// DeleteUser removes the user together with every post they authored and
// reports how many posts went with them.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) (int, error)
}

// PostRepository persists the post collection.
type PostRepository interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	CreatePost(ctx context.Context, post *model.Post) error
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id int64) error
}

// Store is what the server needs from a storage backend.
type Store interface {
	UserRepository
	PostRepository
	Close() error
}
