package repository

import (
	"errors"
	"fmt"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/jackc/pgx/v5"
)

// asStoreError wraps backend failures as transient store errors so the
// service layer can decide whether to retry. Domain errors pass through
// untouched.
func asStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) || domain.IsValidation(err) || domain.IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
