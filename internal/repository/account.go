package repository

import (
	"context"

	"github.com/sbekbolat/maglink/internal/domain"
)

// AccountRepository is the external user store this service borrows
// identities from. Lookups return domain.ErrAccountNotFound when no row
// matches; the Active flag is returned as stored, callers decide what an
// inactive account means for them.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindAdmin returns the oldest administrative account, used as a
	// sender-identity fallback.
	FindAdmin(ctx context.Context) (*domain.Account, error)
}
