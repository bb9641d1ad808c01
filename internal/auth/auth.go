package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hollis/gaffer/internal/model"
	"github.com/hollis/gaffer/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// UserStore is the slice of the store the authenticator needs.
type UserStore interface {
	GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator turns credentials into tokens and tokens back into users.
type Authenticator struct {
	users  UserStore
	tokens *TokenService
}

func NewAuthenticator(users UserStore, tokens *TokenService) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// Login verifies a username and password and returns a signed access token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.GetActiveUserByUsername(ctx, username)
	if err != nil {
		// Burn a comparison so a miss costs the same as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return a.tokens.Issue(user.Username)
}

// Authenticate resolves a bearer token to the active user it names. Tokens
// for users that have since been deleted or deactivated stop working.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	username, err := a.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := a.users.GetActiveUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
