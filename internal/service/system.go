package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type systemKeeper interface {
	Ping(ctx context.Context) error
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfAddresses(ctx context.Context) (int64, error)
}

// System serves the operational endpoints.
type System struct {
	db systemKeeper
}

func NewSystem(db systemKeeper) *System {
	return &System{db: db}
}

func (s *System) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *System) Stats(ctx context.Context) (*models.InternalStatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/system.go/Stats(): error while `s.db.GetNumberOfUsers()` calling: %w", err)
	}

	addresses, err := s.db.GetNumberOfAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/system.go/Stats(): error while `s.db.GetNumberOfAddresses()` calling: %w", err)
	}

	return &models.InternalStatsResponse{
		Users:     users,
		Addresses: addresses,
	}, nil
}
