package identity

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is what a verified bearer token says about the caller.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier checks a bearer token and returns the caller it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
