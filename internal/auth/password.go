// Package auth provides password hashing for the postboard API.
//
// There are no sessions and no tokens: every protected request carries the
// username and password in its JSON body, and the service layer re-checks them
// with PasswordService.Verify on each call.
//
// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt (so two users with the same password get different hashes)
//   - Embeds the salt in the output hash (no separate salt field needed in users.json)
//   - Controls the work factor via "cost" (higher = slower = harder to crack)
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/postboard/internal/apperror"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest password bcrypt will hash without truncating.
const MaxPasswordBytes = 72

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests. bcrypt.MinCost (4) makes tests run much faster
// without compromising the logic being tested.
type PasswordService struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Cost returns the work factor new hashes are generated with.
func (p *PasswordService) Cost() int {
	return p.cost
}

// Hash hashes the given plaintext password with bcrypt.
//
// Returns a validation error if the plaintext is too long (>72 bytes, a bcrypt
// limit), so the handler can answer 400 instead of 500.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		// bcrypt silently truncates passwords longer than 72 bytes.
		// We reject them explicitly so callers aren't surprised.
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil if they match, a non-nil error if they don't.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword uses a constant-time comparison internally,
// so an attacker can't tell from response time whether they got the first
// byte right.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// BurnCompare runs one bcrypt comparison against a fixed hash and throws the
// result away. Call it when the username is unknown so that a failed lookup
// costs the same time as a wrong password.
func (p *PasswordService) BurnCompare(plaintext string) {
	p.dummyOnce.Do(func() {
		// Error ignored: "postboard" is well under 72 bytes and the cost is in range.
		p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("postboard"), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
}
