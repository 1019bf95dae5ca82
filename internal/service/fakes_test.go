package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeStore is an in-memory implementation of both repository interfaces.
// Slices (not maps) so storage order is observable, like the real stores.
type fakeStore struct {
	users []model.User
	posts []model.Post

	// set to a non-nil error to simulate a storage failure
	listErr   error
	lookupErr error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.User{}, f.users...), nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", "Username already exists")
		}
	}
	var maxID int64
	for _, u := range f.users {
		maxID = max(maxID, u.ID)
	}
	user.ID = maxID + 1
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *model.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	idx := -1
	for i := range f.users {
		if f.users[i].ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return 0, apperror.NotFound("user", id)
	}
	f.users = append(f.users[:idx], f.users[idx+1:]...)

	kept := f.posts[:0]
	for _, p := range f.posts {
		if !p.OwnedBy(id) {
			kept = append(kept, p)
		}
	}
	removed := len(f.posts) - len(kept)
	f.posts = kept
	return removed, nil
}

func (f *fakeStore) ListPosts(_ context.Context) ([]model.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Post{}, f.posts...), nil
}

func (f *fakeStore) GetPostByID(_ context.Context, id int64) (*model.Post, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, p := range f.posts {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (f *fakeStore) CreatePost(_ context.Context, post *model.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	var maxID int64
	for _, p := range f.posts {
		maxID = max(maxID, p.ID)
	}
	post.ID = maxID + 1
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakeStore) UpdatePost(_ context.Context, post *model.Post) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i] = *post
			return nil
		}
	}
	return apperror.NotFound("post", post.ID)
}

func (f *fakeStore) DeletePost(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAccountService wires an AccountService to store. bcrypt.MinCost
// keeps hashing fast.
func newTestAccountService(t *testing.T, store *fakeStore) *AccountService {
	t.Helper()
	return NewAccountService(store, auth.NewPasswordService(bcrypt.MinCost), testLogger())
}

// registerUser registers through the service so the stored hash is real.
func registerUser(t *testing.T, svc *AccountService, username, password string) *model.User {
	t.Helper()
	u, err := svc.Register(context.Background(), username, username+"@example.com", password)
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
	return u
}
