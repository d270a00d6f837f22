package ledger

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput       = errors.New("invalid ledger input")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// GetHTTPStatusCode maps domain error sang HTTP status code
func GetHTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientTokens):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
