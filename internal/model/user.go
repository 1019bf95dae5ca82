// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// Password holds a bcrypt hash, never the plaintext. The JSON name stays
// "password" so users.json keeps the same shape it always had:
//
//	[
//	  {"id": 1, "username": "alice", "email": "a@example.com", "password": "$2a$12$..."}
//	]
//
// User is the STORAGE shape. Anything that leaves the server goes through
// Safe() first, so the hash is never serialised into a response.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SafeUser is a User with the password stripped.
type SafeUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Safe returns the response-safe view of the user.
func (u User) Safe() SafeUser {
	return SafeUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// SafeUsers strips passwords from a whole collection, preserving order.
func SafeUsers(users []User) []SafeUser {
	out := make([]SafeUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Safe())
	}
	return out
}
