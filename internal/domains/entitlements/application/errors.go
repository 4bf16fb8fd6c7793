package application

import (
	"errors"
	"fmt"

	"github.com/moneta-site/go-calculators-api/internal/domains/entitlements/domain"
)

// ErrInvalidInput signals the request violated an entitlement invariant.
var ErrInvalidInput = errors.New("invalid entitlement input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidIdentity) ||
		errors.Is(err, domain.ErrMissingReference) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
