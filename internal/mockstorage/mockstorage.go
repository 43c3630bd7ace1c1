// Package mockstorage provides testify-based mocks of the storage interfaces.
// It is used to assert which storage calls a handler or service makes, and
// that some requests are rejected before any storage access at all.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// StorageMock implements storage.Storage.
type StorageMock struct {
	mock.Mock

	// OnGetNumberOfUsers, if set, replaces the testify handler of
	// GetNumberOfUsers.
	OnGetNumberOfUsers func(ctx context.Context) (int64, error)

	// OnGetNumberOfAddresses, if set, replaces the testify handler of
	// GetNumberOfAddresses.
	OnGetNumberOfAddresses func(ctx context.Context) (int64, error)
}

func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *StorageMock) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

func (m *StorageMock) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

// ForUser returns the scope registered with On("ForUser", userID).
func (m *StorageMock) ForUser(userID int64) storage.AddressScope {
	args := m.Called(userID)
	scope, _ := args.Get(0).(storage.AddressScope)
	return scope
}

func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfUsers != nil {
		return m.OnGetNumberOfUsers(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) GetNumberOfAddresses(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfAddresses != nil {
		return m.OnGetNumberOfAddresses(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// AddressScopeMock implements storage.AddressScope.
type AddressScopeMock struct {
	mock.Mock
}

func (m *AddressScopeMock) ListAddresses(ctx context.Context) ([]models.Address, error) {
	args := m.Called(ctx)
	addresses, _ := args.Get(0).([]models.Address)
	return addresses, args.Error(1)
}

func (m *AddressScopeMock) CreateAddress(ctx context.Context, newAddress models.NewAddress) (*models.Address, error) {
	args := m.Called(ctx, newAddress)
	address, _ := args.Get(0).(*models.Address)
	return address, args.Error(1)
}

func (m *AddressScopeMock) Address(addressID int64) storage.ScopedAddress {
	args := m.Called(addressID)
	address, _ := args.Get(0).(storage.ScopedAddress)
	return address
}

// ScopedAddressMock implements storage.ScopedAddress.
type ScopedAddressMock struct {
	mock.Mock
}

func (m *ScopedAddressMock) Get(ctx context.Context) (*models.Address, error) {
	args := m.Called(ctx)
	address, _ := args.Get(0).(*models.Address)
	return address, args.Error(1)
}

func (m *ScopedAddressMock) Update(ctx context.Context, patch models.AddressPatch) (*models.Address, error) {
	args := m.Called(ctx, patch)
	address, _ := args.Get(0).(*models.Address)
	return address, args.Error(1)
}

func (m *ScopedAddressMock) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
