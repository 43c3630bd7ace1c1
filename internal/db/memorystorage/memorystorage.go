// Package memorystorage is an in-process implementation of storage.Storage.
// A single mutex makes every check-and-write atomic, which gives the same
// uniqueness and ownership guarantees as the SQL constraints.
package memorystorage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type MemoryStorage struct {
	mu            sync.RWMutex
	users         map[int64]models.User
	userIDByEmail map[string]int64
	addresses     map[int64]models.Address
	nextUserID    int64
	nextAddressID int64
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:         map[int64]models.User{},
		userIDByEmail: map[string]int64{},
		addresses:     map[int64]models.Address{},
		nextUserID:    1,
		nextAddressID: 1,
	}, nil
}

func (s *MemoryStorage) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.userIDByEmail[email]; exists {
		return nil, models.ErrDuplicateEmail
	}

	usr := models.User{
		ID:           s.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextUserID++
	s.users[usr.ID] = usr
	s.userIDByEmail[email] = usr.ID

	return &usr, nil
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.userIDByEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	usr := s.users[userID]

	return &usr, nil
}

func (s *MemoryStorage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}

	return &usr, nil
}

func (s *MemoryStorage) ForUser(userID int64) storage.AddressScope {
	return &addressScope{storage: s, userID: userID}
}

func (s *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

func (s *MemoryStorage) GetNumberOfAddresses(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.addresses)), nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

type addressScope struct {
	storage *MemoryStorage
	userID  int64
}

func (scope *addressScope) ListAddresses(ctx context.Context) ([]models.Address, error) {
	scope.storage.mu.RLock()
	defer scope.storage.mu.RUnlock()

	result := []models.Address{}
	for _, address := range scope.storage.addresses {
		if address.UserID == scope.userID {
			result = append(result, address)
		}
	}
	slices.SortFunc(result, func(a, b models.Address) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return result, nil
}

func (scope *addressScope) CreateAddress(ctx context.Context, newAddress models.NewAddress) (*models.Address, error) {
	scope.storage.mu.Lock()
	defer scope.storage.mu.Unlock()

	// same guarantee as the foreign key of the SQL schema
	if _, ok := scope.storage.users[scope.userID]; !ok {
		return nil, models.ErrNotFound
	}

	address := models.Address{
		ID:          scope.storage.nextAddressID,
		UserID:      scope.userID,
		Name:        newAddress.Name,
		Description: newAddress.Description,
		Lat:         newAddress.Coordinate.Lat,
		Lng:         newAddress.Coordinate.Lng,
		CreatedAt:   time.Now().UTC(),
	}
	scope.storage.nextAddressID++
	scope.storage.addresses[address.ID] = address

	return &address, nil
}

func (scope *addressScope) Address(addressID int64) storage.ScopedAddress {
	return &scopedAddress{scope: scope, addressID: addressID}
}

type scopedAddress struct {
	scope     *addressScope
	addressID int64
}

// owned must be called with the storage lock held.
func (a *scopedAddress) owned() (models.Address, bool) {
	address, ok := a.scope.storage.addresses[a.addressID]
	if !ok || address.UserID != a.scope.userID {
		return models.Address{}, false
	}

	return address, true
}

func (a *scopedAddress) Get(ctx context.Context) (*models.Address, error) {
	a.scope.storage.mu.RLock()
	defer a.scope.storage.mu.RUnlock()

	address, ok := a.owned()
	if !ok {
		return nil, models.ErrNotFound
	}

	return &address, nil
}

func (a *scopedAddress) Update(ctx context.Context, patch models.AddressPatch) (*models.Address, error) {
	a.scope.storage.mu.Lock()
	defer a.scope.storage.mu.Unlock()

	address, ok := a.owned()
	if !ok {
		return nil, models.ErrNotFound
	}
	if patch.Name != nil {
		address.Name = *patch.Name
	}
	if patch.Description != nil {
		address.Description = *patch.Description
	}
	a.scope.storage.addresses[address.ID] = address

	return &address, nil
}

func (a *scopedAddress) Delete(ctx context.Context) error {
	a.scope.storage.mu.Lock()
	defer a.scope.storage.mu.Unlock()

	if _, ok := a.owned(); !ok {
		return models.ErrNotFound
	}
	delete(a.scope.storage.addresses, a.addressID)

	return nil
}
