package service

import (
	"context"
	"fmt"
	"math"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/geo"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type addressKeeper interface {
	ForUser(userID int64) storage.AddressScope
}

type locationResolver interface {
	Geocode(ctx context.Context, text string) (models.Coordinate, bool, error)
}

// Addresses manages the favorite addresses of the authenticated user.
// Every operation goes through the user's storage scope.
type Addresses struct {
	db       addressKeeper
	geocoder locationResolver
}

func NewAddresses(db addressKeeper, resolver locationResolver) *Addresses {
	return &Addresses{
		db:       db,
		geocoder: resolver,
	}
}

// Create geocodes searchWord and stores the resulting point under name.
func (s *Addresses) Create(
	ctx context.Context,
	userID int64,
	name,
	searchWord,
	description string,
) (*models.Address, error) {
	if name == "" {
		return nil, validationError("name is required")
	}
	if searchWord == "" {
		return nil, validationError("searchWord is required")
	}

	coordinate, found, err := s.geocoder.Geocode(ctx, searchWord)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/addresses.go/Create(): error while `s.geocoder.Geocode()` calling: %w", err)
	}
	if !found {
		return nil, ErrLocationNotFound
	}

	address, err := s.db.ForUser(userID).CreateAddress(ctx, models.NewAddress{
		Name:        name,
		Description: description,
		Coordinate:  coordinate,
	})
	if err != nil {
		return nil, fmt.Errorf("in internal/service/addresses.go/Create(): error while `CreateAddress()` calling: %w", err)
	}

	return address, nil
}

func (s *Addresses) List(ctx context.Context, userID int64) ([]models.Address, error) {
	return s.db.ForUser(userID).ListAddresses(ctx)
}

// Search returns the owned addresses at most radiusKm away from origin,
// ordered by ascending id.
func (s *Addresses) Search(
	ctx context.Context,
	userID int64,
	radiusKm float64,
	origin models.Coordinate,
) ([]models.Address, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil, validationError("radius must be a positive number")
	}
	if math.IsNaN(origin.Lat) || origin.Lat < -90 || origin.Lat > 90 {
		return nil, validationError("from.lat must be within [-90, 90]")
	}
	if math.IsNaN(origin.Lng) || origin.Lng < -180 || origin.Lng > 180 {
		return nil, validationError("from.lng must be within [-180, 180]")
	}

	addresses, err := s.db.ForUser(userID).ListAddresses(ctx)
	if err != nil {
		return nil, err
	}

	return funk.Filter(addresses, func(address models.Address) bool {
		return geo.DistanceKm(origin, address.Coordinate()) <= radiusKm
	}).([]models.Address), nil
}

// Update changes the name and/or description of an owned address. An empty
// patch writes nothing and returns the stored record.
func (s *Addresses) Update(
	ctx context.Context,
	userID,
	addressID int64,
	patch models.AddressPatch,
) (*models.Address, error) {
	if addressID <= 0 {
		return nil, validationError("id must be a positive integer")
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, validationError("name must not be empty")
	}

	address := s.db.ForUser(userID).Address(addressID)
	if patch.Name == nil && patch.Description == nil {
		return address.Get(ctx)
	}

	return address.Update(ctx, patch)
}

func (s *Addresses) Delete(ctx context.Context, userID, addressID int64) error {
	if addressID <= 0 {
		return validationError("id must be a positive integer")
	}

	return s.db.ForUser(userID).Address(addressID).Delete(ctx)
}
