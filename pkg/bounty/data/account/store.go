package account

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

type Store interface {
	// Create allocates a new account.
	//
	// ErrAccountExists is returned if an account already exists at the address.
	Create(ctx context.Context, record *Record) error

	// Update replaces the lamports and data of an existing account.
	//
	// ErrAccountNotFound is returned if the account doesn't exist.
	Update(ctx context.Context, record *Record) error

	// Delete removes an account, freeing its address for reuse.
	//
	// ErrAccountNotFound is returned if the account doesn't exist.
	Delete(ctx context.Context, address string) error

	// Get gets an account by its address.
	//
	// ErrAccountNotFound is returned if the account doesn't exist.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets all accounts owned by a program whose data starts with
	// dataPrefix, ordered by creation. An empty prefix matches every account.
	//
	// ErrAccountNotFound is returned if no accounts match.
	GetAllByOwner(ctx context.Context, owner string, dataPrefix []byte) ([]*Record, error)
}
