package application

import (
	"errors"
	"fmt"

	"github.com/moneta-site/go-calculators-api/internal/domains/calculators/domain"
)

// ErrInvalidInput signals the request violated a calculator invariant.
var ErrInvalidInput = errors.New("invalid calculator input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrAgeOutOfRange) ||
		errors.Is(err, domain.ErrNegativeAmount) ||
		errors.Is(err, domain.ErrInvalidRate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
