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

// compile-time check that *DB implements the repository interfaces
var (
	_ repository.UserRepository = (*DB)(nil)
	_ repository.Store          = (*DB)(nil)
)

// ListUsers returns every user ordered by id.
func (db *DB) ListUsers(ctx context.Context) (users []model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "list_users", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, email, password FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	// ALWAYS close rows, or the single connection is never released.
	defer rows.Close()

	users = []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// GetUserByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (user *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_user", start, err) }(time.Now())

	var u model.User
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}

// GetUserByUsername retrieves a user by exact (case-sensitive) username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (user *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "get_user_by_username", start, err) }(time.Now())

	var u model.User
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

// CreateUser inserts a user with id = max+1.
//
// The username check runs inside the same transaction as the insert; the
// UNIQUE constraint backs it up, but checking first lets us return a clean
// apperror.Conflict instead of a driver-specific constraint error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "create_user", start, err) }(time.Now())

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var taken int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
		).Scan(&taken)
		if err != nil {
			return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
		}
		if taken > 0 {
			return apperror.Conflict("username", "Username already exists")
		}

		id, err := nextID(ctx, tx, "users")
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password) VALUES (?, ?, ?, ?)`,
			id, user.Username, user.Email, user.Password,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
		}

		user.ID = id
		return nil
	})
}

// UpdateUser saves email and password for user.ID. The username is immutable.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "update_user", start, err) }(time.Now())

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, password = ? WHERE id = ?`,
		user.Email, user.Password, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// DeleteUser removes the user and all their posts in one transaction and
// returns the number of posts removed.
func (db *DB) DeleteUser(ctx context.Context, id int64) (removed int, err error) {
	defer func(start time.Time) { metrics.ObserveStore(driverName, "delete_user", start, err) }(time.Now())

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		// posts first: author_id references users(id)
		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE author_id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting posts of user %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("user", id)
		}

		removed = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
