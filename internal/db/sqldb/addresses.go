package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

type addressScope struct {
	db     *DB
	userID int64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner, userID int64) (*models.Address, error) {
	var (
		address   models.Address
		createdAt timestamp
	)
	err := row.Scan(
		&address.ID,
		&address.Name,
		&address.Description,
		&address.Lat,
		&address.Lng,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	address.UserID = userID
	address.CreatedAt = createdAt.Time

	return &address, nil
}

func (scope *addressScope) ListAddresses(ctx context.Context) ([]models.Address, error) {
	rows, err := scope.db.database.QueryContext(
		ctx,
		scope.db.rebind(`
			SELECT id, name, description, lat, lng, created_at
				FROM addresses
				WHERE user_id = $1
				ORDER BY id
		`),
		scope.userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Address{}
	for rows.Next() {
		address, err := scanAddress(rows, scope.userID)
		if err != nil {
			return nil, err
		}
		result = append(result, *address)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (scope *addressScope) CreateAddress(ctx context.Context, newAddress models.NewAddress) (*models.Address, error) {
	createdAt := scope.db.timestamp()

	row := scope.db.database.QueryRowContext(
		ctx,
		scope.db.rebind(`
			INSERT INTO addresses (user_id, name, description, lat, lng, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
		`),
		scope.userID,
		newAddress.Name,
		newAddress.Description,
		newAddress.Coordinate.Lat,
		newAddress.Coordinate.Lng,
		createdAt,
	)
	var addressID int64
	if err := row.Scan(&addressID); err != nil {
		return nil, err
	}

	return &models.Address{
		ID:          addressID,
		UserID:      scope.userID,
		Name:        newAddress.Name,
		Description: newAddress.Description,
		Lat:         newAddress.Coordinate.Lat,
		Lng:         newAddress.Coordinate.Lng,
		CreatedAt:   createdAt,
	}, nil
}

func (scope *addressScope) Address(addressID int64) storage.ScopedAddress {
	return &scopedAddress{scope: scope, addressID: addressID}
}

type scopedAddress struct {
	scope     *addressScope
	addressID int64
}

func (a *scopedAddress) Get(ctx context.Context) (*models.Address, error) {
	row := a.scope.db.database.QueryRowContext(
		ctx,
		a.scope.db.rebind(`
			SELECT id, name, description, lat, lng, created_at
				FROM addresses
				WHERE id = $1 AND user_id = $2
		`),
		a.addressID,
		a.scope.userID,
	)

	address, err := scanAddress(row, a.scope.userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return address, nil
}

// Update applies the non-nil fields of patch.
func (a *scopedAddress) Update(ctx context.Context, patch models.AddressPatch) (*models.Address, error) {
	row := a.scope.db.database.QueryRowContext(
		ctx,
		a.scope.db.rebind(`
			UPDATE addresses
				SET name = COALESCE($1, name),
					description = COALESCE($2, description)
				WHERE id = $3 AND user_id = $4
				RETURNING id, name, description, lat, lng, created_at
		`),
		patch.Name,
		patch.Description,
		a.addressID,
		a.scope.userID,
	)

	address, err := scanAddress(row, a.scope.userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return address, nil
}

func (a *scopedAddress) Delete(ctx context.Context) error {
	result, err := a.scope.db.database.ExecContext(
		ctx,
		a.scope.db.rebind(`DELETE FROM addresses WHERE id = $1 AND user_id = $2`),
		a.addressID,
		a.scope.userID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}
