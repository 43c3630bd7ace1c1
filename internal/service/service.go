// Package service holds the business operations behind the HTTP API:
// account registration and login, ownership-scoped address management,
// proximity search and the operational stats.
package service

import (
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// ErrValidation marks a request rejected before any state is touched.
// Errors wrapping it carry a human readable detail.
var ErrValidation = errors.New("invalid request")

// ErrInvalidCredentials covers unknown email and wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrLocationNotFound is returned when the search word cannot be geocoded.
var ErrLocationNotFound = fmt.Errorf("location %w", models.ErrNotFound)

func validationError(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}
