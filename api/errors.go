package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/go-playground/validator/v10"
)

func statusForError(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindingErrorMessage turns validator field errors into something a client
// can read instead of the raw struct-tag dump.
func bindingErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "oneof":
			parts = append(parts, fe.Field()+" must be one of: "+fe.Param())
		case "min":
			parts = append(parts, fe.Field()+" must be at least "+fe.Param())
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
