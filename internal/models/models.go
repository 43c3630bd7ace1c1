// Package models holds the data types shared by storage, services and the
// HTTP layer: users, addresses, coordinates and the JSON request/response
// shapes of the public API.
package models

import (
	"errors"
	"time"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Coordinate is a point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address is a named point owned by exactly one user.
type Address struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Coordinate returns the position of the address.
func (a Address) Coordinate() Coordinate {
	return Coordinate{Lat: a.Lat, Lng: a.Lng}
}

// NewAddress carries the fields of an address before it is persisted.
// The owner is supplied by the scope it is created through.
type NewAddress struct {
	Name        string
	Description string
	Coordinate  Coordinate
}

// AddressPatch lists the mutable fields of an address. Nil means "keep".
type AddressPatch struct {
	Name        *string
	Description *string
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
}

type UserResponse struct {
	Item *User `json:"item"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateAddressRequest struct {
	SearchWord  string `json:"searchWord" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type UpdateAddressRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

type SearchOrigin struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type SearchAddressesRequest struct {
	Radius *float64      `json:"radius" validate:"required,gt=0"`
	From   *SearchOrigin `json:"from" validate:"required"`
}

type AddressResponse struct {
	Item *Address `json:"item"`
}

type AddressesResponse struct {
	Items []Address `json:"items"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type InternalStatsResponse struct {
	Users     int64 `json:"users"`
	Addresses int64 `json:"addresses"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeSQLite
	StorageTypeMemory
)

// ErrNotFound is returned by storage when a record does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by storage when the email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")
