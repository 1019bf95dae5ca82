package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test.
// newTestDB registers Close with t.Cleanup, so each test gets its own.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "hash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestPost(t *testing.T, db *DB, author *model.User, title string) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, Content: "body", AuthorID: author.ID, AuthorUsername: author.Username}
	if err := db.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

// =========================================================================
// USER TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "alice")
	second := createTestUser(t, db, "bob")

	if first.ID != 1 {
		t.Errorf("first user ID = %d, want 1", first.ID)
	}
	if second.ID != 2 {
		t.Errorf("second user ID = %d, want 2", second.ID)
	}
}

func TestCreateUser_IDIsMaxPlusOne(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestUser(t, db, "carol")

	if _, err := db.DeleteUser(context.Background(), bob.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	dave := createTestUser(t, db, "dave")
	if dave.ID != 4 {
		t.Errorf("dave.ID = %d, want 4", dave.ID)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	err := db.CreateUser(context.Background(), &model.User{Username: "alice", Email: "x", Password: "y"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got: %v", err)
	}

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}

func TestCreateUser_Concurrent(t *testing.T) {
	db := newTestDB(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- db.CreateUser(context.Background(), &model.User{Username: fmt.Sprintf("u%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent CreateUser() error = %v", err)
		}
	}

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	seen := map[int64]bool{}
	for _, u := range users {
		if seen[u.ID] {
			t.Errorf("duplicate id %d", u.ID)
		}
		seen[u.ID] = true
	}
	if len(users) != n {
		t.Errorf("len(users) = %d, want %d", len(users), n)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	got, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if got.ID != alice.ID || got.Password != "hash" {
		t.Errorf("got %+v, want %+v", got, alice)
	}

	_, err = db.GetUserByUsername(context.Background(), "Alice")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound for different case, got: %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "alice")

	u.Email = "changed@example.com"
	u.Password = "new-hash"
	if err := db.UpdateUser(context.Background(), u); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	got, err := db.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "changed@example.com" || got.Password != "new-hash" {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateUser(context.Background(), &model.User{ID: 9})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestDeleteUser_Cascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestPost(t, db, alice, "a1")
	createTestPost(t, db, alice, "a2")
	kept := createTestPost(t, db, bob, "b1")

	removed, err := db.DeleteUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	posts, err := db.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0] != *kept {
		t.Errorf("remaining posts = %+v, want only %+v", posts, kept)
	}

	if _, err := db.GetUserByID(ctx, alice.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("alice still exists after delete: %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.DeleteUser(context.Background(), 3)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// =========================================================================
// POST TESTS
// =========================================================================

func TestListPosts_Empty(t *testing.T) {
	db := newTestDB(t)

	posts, err := db.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	// Must be an empty slice, not nil, so it serialises as [] not null.
	if posts == nil {
		t.Error("ListPosts() returned nil, want empty slice")
	}
}

func TestPostLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	p := createTestPost(t, db, alice, "T")
	if p.ID != 1 {
		t.Errorf("post ID = %d, want 1", p.ID)
	}

	p.Title = "T2"
	if err := db.UpdatePost(ctx, p); err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}

	got, err := db.GetPostByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPostByID() error = %v", err)
	}
	if got.Title != "T2" || got.Content != "body" || got.AuthorUsername != "alice" {
		t.Errorf("unexpected post after update: %+v", got)
	}

	if err := db.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}
	if _, err := db.GetPostByID(ctx, p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestPost_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.UpdatePost(ctx, &model.Post{ID: 1}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePost: expected ErrNotFound, got: %v", err)
	}
	if err := db.DeletePost(ctx, 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeletePost: expected ErrNotFound, got: %v", err)
	}
}
