package storage

import (
	"context"

	"github.com/Peeetk/shop-backend/account/users"
)

// AccountStorage is the persistence contract shared by every backend.
// Lookups for missing accounts report sql.ErrNoRows so callers can use a
// single errors.Is check regardless of the backend in use.
type AccountStorage interface {
	FindByEmail(ctx context.Context, email string) (users.Account, error)
	Insert(ctx context.Context, account users.Account) error
	UpdateCredential(ctx context.Context, email string, credentialHash string) error
	Delete(ctx context.Context, email string) error
	Close() error
}
