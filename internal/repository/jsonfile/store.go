// Package jsonfile implements the repository interfaces on top of two flat
// JSON files: one array of users and one array of posts.
//
// STORAGE MODEL:
// Every operation loads the whole collection from disk, changes it in memory
// and writes the whole collection back. There is no cache: the files are the
// only state, so editing users.json by hand between requests just works.
//
// WHAT MAKES THIS SAFE(R):
//   - One sync.Mutex serialises every read-modify-write in this process, so two
//     concurrent requests can no longer overwrite each other's changes.
//   - Writes go through atomicwriter: the new content lands in a temp file in
//     the same directory and is renamed over the old one. A crash mid-write
//     leaves either the old file or the new file, never half of each.
//
// Two processes pointing at the same files are still NOT coordinated.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/moby/sys/atomicwriter"

	"github.com/sakif/postboard/internal/model"
)

const driverName = "json"

// filePerm is the mode new collection files are created with.
const filePerm = 0o644

// Store is a file-backed user and post repository.
type Store struct {
	usersPath string
	postsPath string

	// mu guards every read-modify-write cycle on both files.
	mu sync.Mutex
}

// New returns a Store that reads and writes the given files. Parent
// directories are created if needed; the files themselves are created on the
// first write.
func New(usersPath, postsPath string) (*Store, error) {
	for _, p := range []string{usersPath, postsPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("jsonfile: creating directory for %s: %w", p, err)
		}
	}

	return &Store{usersPath: usersPath, postsPath: postsPath}, nil
}

// Close is a no-op; files are opened and closed per operation.
func (s *Store) Close() error {
	return nil
}

// UsersPath returns the location of the user collection.
func (s *Store) UsersPath() string { return s.usersPath }

// PostsPath returns the location of the post collection.
func (s *Store) PostsPath() string { return s.postsPath }

func (s *Store) readUsers() ([]model.User, error) {
	return readCollection[model.User](s.usersPath)
}

func (s *Store) writeUsers(users []model.User) error {
	return writeCollection(s.usersPath, users)
}

func (s *Store) readPosts() ([]model.Post, error) {
	return readCollection[model.Post](s.postsPath)
}

func (s *Store) writePosts(posts []model.Post) error {
	return writeCollection(s.postsPath, posts)
}

// readCollection loads a JSON array from path.
//
// A missing file or an empty one is an empty collection: that is the normal
// state of a fresh install. Anything else that goes wrong, a permission error
// or content that isn't a JSON array, is returned as an error. Treating a
// corrupt file as empty would make the next write wipe it for good.
func readCollection[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("jsonfile: reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("jsonfile: parsing %s: %w", path, err)
	}
	if items == nil {
		// literal "null"
		items = []T{}
	}

	return items, nil
}

// writeCollection replaces path with the pretty-printed collection.
func writeCollection[T any](path string, items []T) error {
	if items == nil {
		items = []T{} // "[]", never "null"
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := atomicwriter.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("jsonfile: writing %s: %w", path, err)
	}

	return nil
}

// nextID returns max(existing ids) + 1, or 1 for an empty collection.
// Callers hold s.mu, which is what makes the result collision-free.
func nextID[T any](items []T, id func(T) int64) int64 {
	var maxID int64
	for _, it := range items {
		if v := id(it); v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

// lock takes the store mutex unless the context is already done.
func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	return nil
}
