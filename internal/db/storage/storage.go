// Package storage declares the persistence contract shared by every backend.
// Address access is only reachable through a user scope, so every read and
// write is filtered by the owning user at the storage level.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// UserKeeper is the user directory. CreateUser returns models.ErrDuplicateEmail
// when the email is taken; lookups return models.ErrNotFound.
type UserKeeper interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// AddressKeeper hands out address scopes.
type AddressKeeper interface {
	ForUser(userID int64) AddressScope
}

// AddressScope is the set of addresses owned by one user.
type AddressScope interface {
	// ListAddresses returns the owned addresses ordered by ascending id.
	ListAddresses(ctx context.Context) ([]models.Address, error)

	CreateAddress(ctx context.Context, address models.NewAddress) (*models.Address, error)

	// Address narrows the scope to a single record. Nothing is read until
	// one of the ScopedAddress methods is called.
	Address(addressID int64) ScopedAddress
}

// ScopedAddress is one address of one user. All methods return
// models.ErrNotFound when the record is absent or owned by someone else.
type ScopedAddress interface {
	Get(ctx context.Context) (*models.Address, error)
	Update(ctx context.Context, patch models.AddressPatch) (*models.Address, error)
	Delete(ctx context.Context) error
}

type StatsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfAddresses(ctx context.Context) (int64, error)
}

type Storage interface {
	UserKeeper
	AddressKeeper
	StatsKeeper
	Ping(ctx context.Context) error
	Close() error
}
