package persona

import (
	"errors"
	"net/http"
)

// Domain errors - service layer trả về các sentinel này,
// handler map sang HTTP status qua GetHTTPStatusCode.
var (
	ErrInvalidInput    = errors.New("invalid persona input")
	ErrDuplicateName   = errors.New("persona name already exists for this owner")
	ErrPersonaNotFound = errors.New("persona not found")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonaNotFound)
}

func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// GetHTTPStatusCode maps domain error sang HTTP status code
func GetHTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, ErrPersonaNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
