package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInvalid  = errors.New("account is missing or inactive")
	ErrLinkInvalid     = errors.New("link is invalid or expired")
	ErrNoSecret        = errors.New("signing secret is not configured")
	ErrInvalidUser     = errors.New("user id must be positive")
)

// Account is the slice of the external user store this service reads.
// Identity is borrowed by reference; nothing here owns account data.
type Account struct {
	ID        int64
	Email     string
	Name      string
	Active    bool
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
