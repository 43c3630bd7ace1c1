// Package storagetest is a conformance suite run against every
// storage.Storage implementation.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// Run executes the suite. newStorage must return an empty storage; the suite
// closes it.
func Run(t *testing.T, newStorage func(t *testing.T) storage.Storage) {
	tests := []struct {
		name string
		fn   func(t *testing.T, db storage.Storage)
	}{
		{"users", testUsers},
		{"duplicate_email", testDuplicateEmail},
		{"concurrent_duplicate_email", testConcurrentDuplicateEmail},
		{"address_lifecycle", testAddressLifecycle},
		{"ownership_isolation", testOwnershipIsolation},
		{"concurrent_delete", testConcurrentDelete},
		{"stats", testStats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newStorage(t)
			defer func() {
				require.NoError(t, db.Close())
			}()
			require.NoError(t, db.Ping(context.Background()))

			tt.fn(t, db)
		})
	}
}

func createUser(t *testing.T, db storage.Storage, email string) *models.User {
	t.Helper()
	usr, err := db.CreateUser(context.Background(), email, "hash-of-"+email)
	require.NoError(t, err)
	return usr
}

func createAddress(t *testing.T, scope storage.AddressScope, name string, coordinate models.Coordinate) *models.Address {
	t.Helper()
	address, err := scope.CreateAddress(context.Background(), models.NewAddress{
		Name:        name,
		Description: "description of " + name,
		Coordinate:  coordinate,
	})
	require.NoError(t, err)
	return address
}

func testUsers(t *testing.T, db storage.Storage) {
	ctx := context.Background()

	created := createUser(t, db, "test@test.com")
	assert.Positive(t, created.ID)
	assert.Equal(t, "test@test.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := db.GetUserByEmail(ctx, "test@test.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash-of-test@test.com", byEmail.PasswordHash)

	byID, err := db.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", byID.Email)

	_, err = db.GetUserByEmail(ctx, "TEST@test.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = db.GetUserByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testDuplicateEmail(t *testing.T, db storage.Storage) {
	first := createUser(t, db, "dup@test.com")

	_, err := db.CreateUser(context.Background(), "dup@test.com", "other-hash")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	stored, err := db.GetUserByEmail(context.Background(), "dup@test.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "hash-of-dup@test.com", stored.PasswordHash)
}

func testConcurrentDuplicateEmail(t *testing.T, db storage.Storage) {
	const attempts = 8

	var succeeded, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.CreateUser(context.Background(), "race@test.com", "hash")
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, models.ErrDuplicateEmail):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), duplicates.Load())
}

func testAddressLifecycle(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	usr := createUser(t, db, "owner@test.com")
	scope := db.ForUser(usr.ID)

	empty, err := scope.ListAddresses(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	paris := createAddress(t, scope, "Home", models.Coordinate{Lat: 48.8566, Lng: 2.3522})
	lyon := createAddress(t, scope, "Work", models.Coordinate{Lat: 45.7640, Lng: 4.8357})
	assert.Equal(t, 48.8566, paris.Lat)
	assert.Equal(t, 2.3522, paris.Lng)
	assert.Equal(t, usr.ID, paris.UserID)
	assert.Less(t, paris.ID, lyon.ID)

	listed, err := scope.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, paris.ID, listed[0].ID)
	assert.Equal(t, lyon.ID, listed[1].ID)
	assert.Equal(t, "description of Work", listed[1].Description)

	newName := "Sweet home"
	updated, err := scope.Address(paris.ID).Update(ctx, models.AddressPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Sweet home", updated.Name)
	assert.Equal(t, "description of Home", updated.Description)
	assert.Equal(t, paris.Lat, updated.Lat)
	assert.Equal(t, paris.Lng, updated.Lng)

	newDescription := ""
	updated, err = scope.Address(paris.ID).Update(ctx, models.AddressPatch{Description: &newDescription})
	require.NoError(t, err)
	assert.Equal(t, "Sweet home", updated.Name)
	assert.Equal(t, "", updated.Description)

	unchanged, err := scope.Address(lyon.ID).Update(ctx, models.AddressPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Work", unchanged.Name)

	fetched, err := scope.Address(paris.ID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sweet home", fetched.Name)

	require.NoError(t, scope.Address(paris.ID).Delete(ctx))
	assert.ErrorIs(t, scope.Address(paris.ID).Delete(ctx), models.ErrNotFound)

	_, err = scope.Address(paris.ID).Get(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = scope.Address(paris.ID).Update(ctx, models.AddressPatch{Name: &newName})
	assert.ErrorIs(t, err, models.ErrNotFound)

	listed, err = scope.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, lyon.ID, listed[0].ID)
}

func testOwnershipIsolation(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	alice := createUser(t, db, "alice@test.com")
	bob := createUser(t, db, "bob@test.com")

	aliceAddress := createAddress(t, db.ForUser(alice.ID), "Alice home", models.Coordinate{Lat: 1, Lng: 1})
	createAddress(t, db.ForUser(bob.ID), "Bob home", models.Coordinate{Lat: 2, Lng: 2})

	bobScope := db.ForUser(bob.ID)

	bobList, err := bobScope.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, "Bob home", bobList[0].Name)

	_, err = bobScope.Address(aliceAddress.ID).Get(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stolen := "Stolen"
	_, err = bobScope.Address(aliceAddress.ID).Update(ctx, models.AddressPatch{Name: &stolen})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, bobScope.Address(aliceAddress.ID).Delete(ctx), models.ErrNotFound)

	intact, err := db.ForUser(alice.ID).Address(aliceAddress.ID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice home", intact.Name)

	_, err = db.ForUser(alice.ID + bob.ID + 100).CreateAddress(ctx, models.NewAddress{Name: "Orphan"})
	assert.Error(t, err)
}

func testConcurrentDelete(t *testing.T, db storage.Storage) {
	const attempts = 8

	usr := createUser(t, db, "deleter@test.com")
	scope := db.ForUser(usr.ID)
	address := createAddress(t, scope, "Target", models.Coordinate{Lat: 3, Lng: 3})

	var deleted, notFound atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Address(address.ID).Delete(context.Background())
			switch {
			case err == nil:
				deleted.Add(1)
			case assert.ErrorIs(t, err, models.ErrNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), deleted.Load())
	assert.Equal(t, int32(attempts-1), notFound.Load())
}

func testStats(t *testing.T, db storage.Storage) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		usr := createUser(t, db, fmt.Sprintf("stats%d@test.com", i))
		for j := 0; j <= i; j++ {
			createAddress(t, db.ForUser(usr.ID), fmt.Sprintf("place %d", j), models.Coordinate{Lat: float64(i), Lng: float64(j)})
		}
	}

	users, err := db.GetNumberOfUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), users)

	addresses, err := db.GetNumberOfAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), addresses)
}
