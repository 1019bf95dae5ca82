package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/model"
)

func newTestPostService(store *fakeStore) *PostService {
	return NewPostService(store, testLogger())
}

var (
	author   = &model.User{ID: 1, Username: "alice"}
	stranger = &model.User{ID: 2, Username: "bob"}
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreatePost_Success(t *testing.T) {
	store := newFakeStore()
	svc := newTestPostService(store)

	post, err := svc.Create(context.Background(), author, "T", "C")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := model.Post{ID: 1, Title: "T", Content: "C", AuthorID: 1, AuthorUsername: "alice"}
	if *post != want {
		t.Errorf("Create() = %+v, want %+v", *post, want)
	}
	if len(store.posts) != 1 {
		t.Errorf("stored posts = %d, want 1", len(store.posts))
	}
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name           string
		title, content string
		wantField      string
	}{
		{"missing title", "", "C", "title"},
		{"blank title", "  ", "C", "title"},
		{"missing content", "T", "", "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestPostService(store)

			_, err := svc.Create(context.Background(), author, tt.title, tt.content)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected ErrValidation, got: %v", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
			if len(store.posts) != 0 {
				t.Error("post stored despite validation failure")
			}
		})
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdatePost_PartialUpdate(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{{ID: 1, Title: "T", Content: "C", AuthorID: author.ID, AuthorUsername: "alice"}}
	svc := newTestPostService(store)

	post, err := svc.Update(context.Background(), author, 1, "T2", "")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if post.Title != "T2" || post.Content != "C" {
		t.Errorf("Update() = %+v, want title T2 and content unchanged", post)
	}
	if store.posts[0].Title != "T2" {
		t.Error("update not persisted")
	}
}

func TestUpdatePost_NotOwner(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{{ID: 1, Title: "T", Content: "C", AuthorID: author.ID, AuthorUsername: "alice"}}
	svc := newTestPostService(store)

	_, err := svc.Update(context.Background(), stranger, 1, "hijacked", "")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
	if store.posts[0].Title != "T" {
		t.Error("post modified by non-owner")
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	svc := newTestPostService(newFakeStore())

	_, err := svc.Update(context.Background(), author, 99, "x", "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdatePost_StoreError(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{{ID: 1, AuthorID: author.ID}}
	store.updateErr = errors.New("disk full")
	svc := newTestPostService(store)

	_, err := svc.Update(context.Background(), author, 1, "x", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeletePost(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{
		{ID: 1, AuthorID: author.ID},
		{ID: 2, AuthorID: stranger.ID},
	}
	svc := newTestPostService(store)

	if err := svc.Delete(context.Background(), author, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.posts) != 1 || store.posts[0].ID != 2 {
		t.Errorf("remaining posts = %+v", store.posts)
	}
}

func TestDeletePost_NotOwner(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{{ID: 1, AuthorID: author.ID}}
	svc := newTestPostService(store)

	err := svc.Delete(context.Background(), stranger, 1)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
	if len(store.posts) != 1 {
		t.Error("post deleted by non-owner")
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	svc := newTestPostService(newFakeStore())

	err := svc.Delete(context.Background(), author, 7)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListPosts_PreservesOrder(t *testing.T) {
	store := newFakeStore()
	store.posts = []model.Post{{ID: 3}, {ID: 1}, {ID: 2}}
	svc := newTestPostService(store)

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for i, want := range []int64{3, 1, 2} {
		if posts[i].ID != want {
			t.Errorf("posts[%d].ID = %d, want %d", i, posts[i].ID, want)
		}
	}
}

func TestListPosts_StoreError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("malformed posts.json")
	svc := newTestPostService(store)

	if _, err := svc.List(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}
