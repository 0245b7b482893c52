// Package users manages the shared account registry: registration,
// credential verification and login resolution.
package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("login already taken")
	ErrBadCredential = errors.New("invalid login or password")
	ErrEmptyLogin    = errors.New("login is empty")
	ErrInvalidLogin  = errors.New("login contains invalid characters")
)

// validateLogin rejects logins that could escape the data directory of
// the file backend, which derives filenames from the login.
func validateLogin(login string) error {
	if login == "" {
		return ErrEmptyLogin
	}
	if strings.ContainsAny(login, `/\`) || strings.Contains(login, "..") {
		return ErrInvalidLogin
	}
	return nil
}

// User is one registered account. The wallet lives in its own record;
// only the credential hash is kept here.
type User struct {
	Login        string    `json:"login"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists the registry. Find returns ErrNotFound for unknown
// logins.
type Store interface {
	FindUser(ctx context.Context, login string) (User, error)
	CreateUser(ctx context.Context, u User) error
}

// Directory is the account-directory service handed to the ledger
// engine as a dependency; there is no process-wide user map.
type Directory struct {
	store Store
}

// NewDirectory wraps a user store.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// Register creates a new account with a hashed password.
func (d *Directory) Register(ctx context.Context, login, password string) (User, error) {
	login = strings.TrimSpace(login)
	if err := validateLogin(login); err != nil {
		return User{}, err
	}
	if _, err := d.store.FindUser(ctx, login); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{Login: login, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if err := d.store.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate verifies login and password. The same error is returned
// for unknown logins and wrong passwords.
func (d *Directory) Authenticate(ctx context.Context, login, password string) (User, error) {
	login = strings.TrimSpace(login)
	u, err := d.store.FindUser(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredential
		}
		return User{}, err
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return User{}, ErrBadCredential
	}
	return u, nil
}

// Exists reports whether the login is registered, without touching
// credentials.
func (d *Directory) Exists(ctx context.Context, login string) (bool, error) {
	_, err := d.store.FindUser(ctx, strings.TrimSpace(login))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Resolve implements the ledger engine's account-resolution port.
func (d *Directory) Resolve(ctx context.Context, login string) (bool, error) {
	return d.Exists(ctx, login)
}
