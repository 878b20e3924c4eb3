package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a tunable work factor. A semaphore caps how many
// hashes run at once so a burst of sign-ups cannot occupy every CPU and
// stall unrelated requests.
type Hasher struct {
	cost int
	sem  chan struct{}
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	slots := runtime.GOMAXPROCS(0)
	if slots < 2 {
		slots = 2
	}
	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, slots),
	}
}

// Hash produces a salted digest of plaintext. Blocks while the hasher is
// saturated; honors ctx cancellation while waiting.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-h.sem }()

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false,
// nil); only a malformed digest yields an error.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-h.sem }()

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}
