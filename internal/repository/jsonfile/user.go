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

// compile-time check that *Store implements the repository interfaces
var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.Store          = (*Store)(nil)
)

// ListUsers returns every user in file order.
func (s *Store) ListUsers(ctx context.Context) (users []model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "list_users", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return s.readUsers()
}

// GetUserByID returns the user with the given id or apperror.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (user *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_user", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}

	return nil, apperror.NotFound("user", id)
}

// GetUserByUsername returns the first user whose username equals username
// exactly (case-sensitive), or apperror.ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_user_by_username", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}

	return nil, apperror.NotFound("user", username)
}

// CreateUser appends a user with id = max+1. The username check and the
// append happen under the same lock, so two registrations racing for the same
// name cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "create_user", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return apperror.Conflict("username", "Username already exists")
		}
	}

	user.ID = nextID(users, func(u model.User) int64 { return u.ID })
	users = append(users, *user)

	if err := s.writeUsers(users); err != nil {
		return fmt.Errorf("jsonfile: creating user %q: %w", user.Username, err)
	}

	return nil
}

// UpdateUser replaces the stored record that has user.ID.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "update_user", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return err
	}

	idx := -1
	for i := range users {
		if users[i].ID == user.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NotFound("user", user.ID)
	}
	users[idx] = *user

	if err := s.writeUsers(users); err != nil {
		return fmt.Errorf("jsonfile: updating user %d: %w", user.ID, err)
	}

	return nil
}

// DeleteUser removes the user and every post they authored.
//
// ORDER MATTERS:
// posts.json is rewritten first, users.json second. If the second write
// fails, the account survives without its posts, which is recoverable.
// The other order could leave posts whose author no longer exists.
func (s *Store) DeleteUser(ctx context.Context, id int64) (removed int, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "delete_user", start, err) }(time.Now())

	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	users, err := s.readUsers()
	if err != nil {
		return 0, err
	}

	keptUsers := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			keptUsers = append(keptUsers, u)
		}
	}
	if len(keptUsers) == len(users) {
		return 0, apperror.NotFound("user", id)
	}

	posts, err := s.readPosts()
	if err != nil {
		return 0, err
	}

	keptPosts := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if !p.OwnedBy(id) {
			keptPosts = append(keptPosts, p)
		}
	}
	removed = len(posts) - len(keptPosts)

	if removed > 0 {
		if err := s.writePosts(keptPosts); err != nil {
			return 0, fmt.Errorf("jsonfile: deleting posts of user %d: %w", id, err)
		}
	}

	if err := s.writeUsers(keptUsers); err != nil {
		return removed, fmt.Errorf("jsonfile: deleting user %d: %w", id, err)
	}

	return removed, nil
}
